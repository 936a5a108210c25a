// internal/repository/postgres/chat_repo.go
package postgres

import (
	"context"
	"fmt"

	"flota-service/internal/domain/chat"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Save(ctx context.Context, m *chat.Message) error {
	query := `
		INSERT INTO mensajes (thread_user, from_user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, m.ThreadUser, m.FromUserID, m.Body).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// Thread returns the newest messages of one thread, oldest first.
func (r *ChatRepository) Thread(ctx context.Context, threadUser int64, limit int) ([]chat.Message, error) {
	query := `
		SELECT id, thread_user, from_user_id, body, created_at
		FROM (
			SELECT id, thread_user, from_user_id, body, created_at
			FROM mensajes
			WHERE thread_user = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, threadUser, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ThreadUser, &m.FromUserID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Threads lists the distinct thread users with their latest activity,
// newest first, for the admin inbox.
func (r *ChatRepository) Threads(ctx context.Context) ([]int64, error) {
	query := `
		SELECT thread_user
		FROM mensajes
		GROUP BY thread_user
		ORDER BY MAX(created_at) DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	users := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan thread user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
