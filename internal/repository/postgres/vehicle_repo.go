// internal/repository/postgres/vehicle_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flota-service/internal/domain/vehicle"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const vehicleColumns = "id, dominio, marca, modelo, anio, tipo, chasis, motor, cedula, title, chofer, created_at, updated_at"

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// CreateTx inserts the parent row inside the caller's transaction.
// Uniqueness violations on dominio/chasis/motor surface as ErrConflict.
func (r *VehicleRepository) CreateTx(ctx context.Context, tx pgx.Tx, v *vehicle.Vehicle) error {
	query := `
		INSERT INTO vehiculos (dominio, marca, modelo, anio, tipo, chasis, motor, cedula, title, chofer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		v.Dominio, v.Marca, v.Modelo, v.Anio, v.Tipo, v.Chasis, v.Motor, v.Cedula, v.Title, v.Chofer,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)

	if err != nil {
		return mapPgError(err, "failed to create vehicle")
	}
	return nil
}

// UpdateTx applies one in-place update of the parent row.
func (r *VehicleRepository) UpdateTx(ctx context.Context, tx pgx.Tx, v *vehicle.Vehicle) error {
	query := `
		UPDATE vehiculos
		SET dominio = $1, marca = $2, modelo = $3, anio = $4, tipo = $5,
		    chasis = $6, motor = $7, cedula = $8, title = $9, chofer = $10,
		    updated_at = NOW()
		WHERE id = $11
	`

	tag, err := tx.Exec(ctx, query,
		v.Dominio, v.Marca, v.Modelo, v.Anio, v.Tipo, v.Chasis, v.Motor, v.Cedula, v.Title, v.Chofer, v.ID,
	)
	if err != nil {
		return mapPgError(err, "failed to update vehicle")
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", v.ID))
	}
	return nil
}

// DeleteTx removes the parent row; child tables cascade on vehiculo_id.
func (r *VehicleRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM vehiculos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}
	return nil
}

// FindByID loads one vehicle with its image URLs flattened in.
func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*vehicle.Doc, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE((SELECT array_agg(i.url ORDER BY i.id) FROM imagenes i WHERE i.vehiculo_id = v.id), '{}')
		FROM vehiculos v
		WHERE v.id = $1
	`, prefixColumns("v", vehicleColumns))

	var doc vehicle.Doc
	var imagenes pq.StringArray
	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Dominio, &doc.Marca, &doc.Modelo, &doc.Anio, &doc.Tipo,
		&doc.Chasis, &doc.Motor, &doc.Cedula, &doc.Title, &doc.Chofer,
		&doc.CreatedAt, &doc.UpdatedAt, &imagenes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	doc.Imagenes = []string(imagenes)
	if doc.Imagenes == nil {
		doc.Imagenes = []string{}
	}
	return &doc, nil
}

// FindByIDTx loads the bare parent row inside a transaction.
func (r *VehicleRepository) FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos v WHERE v.id = $1`, prefixColumns("v", vehicleColumns))

	var v vehicle.Vehicle
	err := tx.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Dominio, &v.Marca, &v.Modelo, &v.Anio, &v.Tipo,
		&v.Chasis, &v.Motor, &v.Cedula, &v.Title, &v.Chofer,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("vehicle %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return &v, nil
}

// List returns one page of docs plus the unpaginated total, ordered by
// dominio ascending.
func (r *VehicleRepository) List(ctx context.Context, filters *vehicle.ListFilters) ([]vehicle.Doc, int64, error) {
	whereClause, args := buildVehicleListQuery(filters)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM vehiculos v WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	offset := (filters.Page - 1) * filters.Limit
	argPos := len(args) + 1

	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE((SELECT array_agg(i.url ORDER BY i.id) FROM imagenes i WHERE i.vehiculo_id = v.id), '{}')
		FROM vehiculos v
		WHERE %s
		ORDER BY v.dominio ASC
		LIMIT $%d OFFSET $%d
	`, prefixColumns("v", vehicleColumns), whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	docs := []vehicle.Doc{}
	for rows.Next() {
		var doc vehicle.Doc
		var imagenes pq.StringArray
		err := rows.Scan(
			&doc.ID, &doc.Dominio, &doc.Marca, &doc.Modelo, &doc.Anio, &doc.Tipo,
			&doc.Chasis, &doc.Motor, &doc.Cedula, &doc.Title, &doc.Chofer,
			&doc.CreatedAt, &doc.UpdatedAt, &imagenes,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		doc.Imagenes = []string(imagenes)
		if doc.Imagenes == nil {
			doc.Imagenes = []string{}
		}
		docs = append(docs, doc)
	}

	return docs, total, rows.Err()
}

// CountByUnit aggregates the fleet per organizational unit for the dashboard.
func (r *VehicleRepository) CountByUnit(ctx context.Context) ([]vehicle.UnitCount, error) {
	query := `
		SELECT title, COUNT(*)
		FROM vehiculos
		GROUP BY title
		ORDER BY title ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles by unit: %w", err)
	}
	defer rows.Close()

	counts := []vehicle.UnitCount{}
	for rows.Next() {
		var c vehicle.UnitCount
		if err := rows.Scan(&c.Unidad, &c.Total); err != nil {
			return nil, fmt.Errorf("failed to scan unit count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// mapPgError folds unique violations into ErrConflict.
func mapPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.Wrap(xerrors.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
