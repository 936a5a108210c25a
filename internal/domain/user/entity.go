// internal/domain/user/entity.go
package user

import (
	"time"

	"flota-service/internal/domain/unit"
)

// User represents an account in the system.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Admin        bool      `json:"admin" db:"admin"`
	Unidad       unit.Unit `json:"unidad" db:"unidad"`
	PushToken    *string   `json:"push_token,omitempty" db:"push_token"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated actor attached to every request by the
// auth middleware. The data layer trusts it as-is.
type Principal struct {
	ID     int64     `json:"id"`
	Admin  bool      `json:"admin"`
	Unidad unit.Unit `json:"unidad"`
}

// Principal projects the access-relevant part of a user.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Admin: u.Admin, Unidad: u.Unidad}
}
