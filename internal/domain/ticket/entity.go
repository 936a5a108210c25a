// internal/domain/ticket/entity.go
package ticket

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Ticket is one public support request. Referencia is the ULID handed back
// to the requester so they can quote it without an account.
type Ticket struct {
	ID         int64        `json:"id" db:"id"`
	Referencia string       `json:"referencia" db:"referencia"`
	Nombre     string       `json:"nombre" db:"nombre"`
	Email      string       `json:"email" db:"email"`
	Mensaje    string       `json:"mensaje" db:"mensaje"`
	Estado     Status       `json:"estado" db:"estado"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ClosedAt   sql.NullTime `json:"closed_at,omitempty" db:"closed_at"`
}

type CreateRequest struct {
	Nombre  string `json:"nombre" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Mensaje string `json:"mensaje" binding:"required,max=4000"`
}

type StatusCount struct {
	Estado Status `json:"estado"`
	Total  int64  `json:"total"`
}
