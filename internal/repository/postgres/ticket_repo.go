// internal/repository/postgres/ticket_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flota-service/internal/domain/ticket"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (referencia, nombre, email, mensaje, estado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, t.Referencia, t.Nombre, t.Email, t.Mensaje, t.Estado).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return mapPgError(err, "failed to create ticket")
	}
	return nil
}

func (r *TicketRepository) FindByReferencia(ctx context.Context, referencia string) (*ticket.Ticket, error) {
	query := `
		SELECT id, referencia, nombre, email, mensaje, estado, created_at, closed_at
		FROM tickets
		WHERE referencia = $1
	`

	var t ticket.Ticket
	err := r.db.QueryRow(ctx, query, referencia).Scan(
		&t.ID, &t.Referencia, &t.Nombre, &t.Email, &t.Mensaje, &t.Estado, &t.CreatedAt, &t.ClosedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("ticket %s", referencia))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) List(ctx context.Context, estado ticket.Status) ([]ticket.Ticket, error) {
	query := `
		SELECT id, referencia, nombre, email, mensaje, estado, created_at, closed_at
		FROM tickets
	`
	args := []interface{}{}
	if estado != "" {
		query += " WHERE estado = $1"
		args = append(args, estado)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []ticket.Ticket{}
	for rows.Next() {
		var t ticket.Ticket
		err := rows.Scan(&t.ID, &t.Referencia, &t.Nombre, &t.Email, &t.Mensaje, &t.Estado, &t.CreatedAt, &t.ClosedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Close marks an open ticket closed; closing twice reports ErrNotFound.
func (r *TicketRepository) Close(ctx context.Context, referencia string) error {
	query := `
		UPDATE tickets
		SET estado = $1, closed_at = $2
		WHERE referencia = $3 AND estado = $4
	`

	tag, err := r.db.Exec(ctx, query, ticket.StatusClosed, time.Now(), referencia, ticket.StatusOpen)
	if err != nil {
		return fmt.Errorf("failed to close ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("open ticket %s", referencia))
	}
	return nil
}

func (r *TicketRepository) CountByStatus(ctx context.Context) ([]ticket.StatusCount, error) {
	rows, err := r.db.Query(ctx, `SELECT estado, COUNT(*) FROM tickets GROUP BY estado ORDER BY estado ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	defer rows.Close()

	counts := []ticket.StatusCount{}
	for rows.Next() {
		var c ticket.StatusCount
		if err := rows.Scan(&c.Estado, &c.Total); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
