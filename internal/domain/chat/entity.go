// internal/domain/chat/entity.go
package chat

import "time"

// Message is one support-chat message between an admin and a user. The
// thread key is the non-admin participant's id.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	ThreadUser int64     `json:"thread_user" db:"thread_user"`
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type SendRequest struct {
	ThreadUser int64  `json:"thread_user"`
	Body       string `json:"body" binding:"required,max=2000"`
}
