// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"flota-service/internal/domain/user"
	xerrors "flota-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, email, password_hash, full_name, admin, unidad, push_token, is_active, created_at, updated_at"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Admin,
		&u.Unidad, &u.PushToken, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, "user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO usuarios (email, password_hash, full_name, admin, unidad)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, u.Email, u.PasswordHash, u.FullName, u.Admin, u.Unidad).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapPgError(err, "failed to create user")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE email = LOWER($1)`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE usuarios
		SET full_name = $1, password_hash = $2, admin = $3, unidad = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`

	tag, err := r.db.Exec(ctx, query, u.FullName, u.PasswordHash, u.Admin, u.Unidad, u.IsActive, u.ID)
	if err != nil {
		return mapPgError(err, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("user %d", u.ID))
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("user %d", id))
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios ORDER BY full_name ASC`, userColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListAdmins feeds the notification fan-out.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE admin = TRUE AND is_active = TRUE`, userColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *u)
	}
	return admins, rows.Err()
}

func (r *UserRepository) SetPushToken(ctx context.Context, id int64, token string) error {
	tag, err := r.db.Exec(ctx, `UPDATE usuarios SET push_token = $1, updated_at = NOW() WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, fmt.Sprintf("user %d", id))
	}
	return nil
}
