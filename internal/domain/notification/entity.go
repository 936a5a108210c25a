// internal/domain/notification/entity.go
package notification

import (
	"database/sql"
	"time"
)

type Type string

const (
	TypeVehicleCreated Type = "vehicle_created"
	TypeVehicleUpdated Type = "vehicle_updated"
	TypeTicketOpened   Type = "ticket_opened"
	TypeChatMessage    Type = "chat_message"
)

// Notification is one in-app notification row for a user.
type Notification struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"user_id" db:"user_id"`
	Title     string       `json:"title" db:"title"`
	Message   string       `json:"message" db:"message"`
	Type      Type         `json:"type" db:"type"`
	IsRead    bool         `json:"is_read" db:"is_read"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ReadAt    sql.NullTime `json:"read_at,omitempty" db:"read_at"`
}

type ListFilters struct {
	IsRead *bool `form:"is_read"`
	Page   int   `form:"page"`
	Limit  int   `form:"limit"`
}

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	TotalPages    int            `json:"total_pages"`
}
