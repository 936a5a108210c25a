// internal/repository/postgres/history_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"flota-service/internal/domain/history"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository persists the seven child collections. Table and column
// names come from the closed history.Spec table, never from request input.
type HistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func mustSpec(kind history.Kind) (history.Spec, error) {
	spec, ok := history.SpecFor(kind)
	if !ok {
		return history.Spec{}, xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("unknown history collection %q", kind))
	}
	return spec, nil
}

func payloadArg(spec history.Spec, e *history.Entry) interface{} {
	if spec.Numeric {
		return e.Kilometraje
	}
	return e.Valor
}

func (r *HistoryRepository) AppendTx(ctx context.Context, tx pgx.Tx, e *history.Entry) error {
	spec, err := mustSpec(e.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (vehiculo_id, %s) VALUES ($1, $2) RETURNING id, fecha`,
		spec.Table, spec.PayloadCol,
	)
	if err := tx.QueryRow(ctx, query, e.VehiculoID, payloadArg(spec, e)).Scan(&e.ID, &e.Fecha); err != nil {
		return fmt.Errorf("failed to append %s entry: %w", e.Kind, err)
	}
	return nil
}

func (r *HistoryRepository) AppendBulkTx(ctx context.Context, tx pgx.Tx, kind history.Kind, vehiculoID int64, valores []string) error {
	spec, err := mustSpec(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (vehiculo_id, %s) VALUES ($1, $2)`, spec.Table, spec.PayloadCol)
	for _, v := range valores {
		if _, err := tx.Exec(ctx, query, vehiculoID, v); err != nil {
			return fmt.Errorf("failed to bulk-append %s entry: %w", kind, err)
		}
	}
	return nil
}

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	spec, err := mustSpec(e.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (vehiculo_id, %s) VALUES ($1, $2) RETURNING id, fecha`,
		spec.Table, spec.PayloadCol,
	)
	if err := r.db.QueryRow(ctx, query, e.VehiculoID, payloadArg(spec, e)).Scan(&e.ID, &e.Fecha); err != nil {
		return fmt.Errorf("failed to append %s entry: %w", e.Kind, err)
	}
	return nil
}

func (r *HistoryRepository) FindLast(ctx context.Context, kind history.Kind, vehiculoID int64) (*history.Entry, error) {
	spec, err := mustSpec(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, vehiculo_id, %s, fecha FROM %s WHERE vehiculo_id = $1 ORDER BY %s DESC, id DESC LIMIT 1`,
		spec.PayloadCol, spec.Table, spec.OrderCol,
	)
	return scanEntry(r.db.QueryRow(ctx, query, vehiculoID), kind, spec)
}

// DeleteLast removes the newest entry by the collection's ordering field.
func (r *HistoryRepository) DeleteLast(ctx context.Context, kind history.Kind, vehiculoID int64) (*history.Entry, error) {
	spec, err := mustSpec(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = (SELECT id FROM %s WHERE vehiculo_id = $1 ORDER BY %s DESC, id DESC LIMIT 1)
		RETURNING id, vehiculo_id, %s, fecha`,
		spec.Table, spec.Table, spec.OrderCol, spec.PayloadCol,
	)
	return scanEntry(r.db.QueryRow(ctx, query, vehiculoID), kind, spec)
}

// DeleteOne matches on both vehiculo_id and id so an id guessed from another
// vehicle's collection never deletes anything.
func (r *HistoryRepository) DeleteOne(ctx context.Context, kind history.Kind, vehiculoID, entryID int64) (*history.Entry, error) {
	spec, err := mustSpec(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE vehiculo_id = $1 AND id = $2 RETURNING id, vehiculo_id, %s, fecha`,
		spec.Table, spec.PayloadCol,
	)
	return scanEntry(r.db.QueryRow(ctx, query, vehiculoID, entryID), kind, spec)
}

func (r *HistoryRepository) DeleteAll(ctx context.Context, kind history.Kind, vehiculoID int64) (int64, error) {
	spec, err := mustSpec(kind)
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE vehiculo_id = $1`, spec.Table), vehiculoID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s entries: %w", kind, err)
	}
	return tag.RowsAffected(), nil
}

func (r *HistoryRepository) List(ctx context.Context, kind history.Kind, vehiculoID int64) ([]history.Entry, error) {
	spec, err := mustSpec(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, vehiculo_id, %s, fecha FROM %s WHERE vehiculo_id = $1 ORDER BY %s DESC, id DESC`,
		spec.PayloadCol, spec.Table, spec.OrderCol,
	)
	rows, err := r.db.Query(ctx, query, vehiculoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", kind, err)
	}
	defer rows.Close()

	entries := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows, kind, spec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row, kind history.Kind, spec history.Spec) (*history.Entry, error) {
	e := history.Entry{Kind: kind}

	var err error
	if spec.Numeric {
		err = row.Scan(&e.ID, &e.VehiculoID, &e.Kilometraje, &e.Fecha)
	} else {
		err = row.Scan(&e.ID, &e.VehiculoID, &e.Valor, &e.Fecha)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("no %s entry", kind))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s entry: %w", kind, err)
	}
	return &e, nil
}
