// internal/domain/vehicle/repository.go
package vehicle

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository persists the vehicle parent row. All mutations run inside the
// caller's transaction so parent and history writes commit atomically.
type Repository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, v *Vehicle) error
	UpdateTx(ctx context.Context, tx pgx.Tx, v *Vehicle) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error

	// FindByID loads the parent row with its image URLs joined in.
	FindByID(ctx context.Context, id int64) (*Doc, error)
	FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*Vehicle, error)

	// List returns one page of docs plus the unpaginated total.
	List(ctx context.Context, filters *ListFilters) ([]Doc, int64, error)

	CountByUnit(ctx context.Context) ([]UnitCount, error)
}
