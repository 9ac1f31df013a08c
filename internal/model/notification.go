package model

import "time"

// Notification is a persisted message addressed to a single user.
type Notification struct {
	ID          int       `json:"id"`
	RecipientID int       `json:"recipient_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
