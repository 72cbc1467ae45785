package models

import "time"

// Notification is a per-user inbox entry. Message is stored as plain text;
// the rendering layer is responsible for escaping it.
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
