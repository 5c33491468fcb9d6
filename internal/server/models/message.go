package models

import "time"

// Message is an immutable chat line.
type Message struct {
	ID        string    `db:"id"`
	Content   string    `db:"content"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
