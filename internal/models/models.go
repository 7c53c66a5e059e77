package models

import "time"

type User struct {
	ID       int64
	Username string
	PassHash []byte
}

type Message struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthEvent is the payload published to the audit queue.
type AuthEvent struct {
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}
