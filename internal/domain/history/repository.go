// internal/domain/history/repository.go
package history

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository persists the seven child collections. Tx variants run inside
// the caller's transaction so parent and child writes commit together.
type Repository interface {
	AppendTx(ctx context.Context, tx pgx.Tx, e *Entry) error
	AppendBulkTx(ctx context.Context, tx pgx.Tx, kind Kind, vehiculoID int64, valores []string) error
	Append(ctx context.Context, e *Entry) error

	// FindLast returns the newest entry by the kind's ordering column.
	FindLast(ctx context.Context, kind Kind, vehiculoID int64) (*Entry, error)
	// DeleteOne removes the entry matching both vehiculo_id and id; the
	// double match keeps one vehicle's caller from deleting another's rows.
	DeleteOne(ctx context.Context, kind Kind, vehiculoID, entryID int64) (*Entry, error)
	DeleteLast(ctx context.Context, kind Kind, vehiculoID int64) (*Entry, error)
	DeleteAll(ctx context.Context, kind Kind, vehiculoID int64) (int64, error)
	List(ctx context.Context, kind Kind, vehiculoID int64) ([]Entry, error)
}
