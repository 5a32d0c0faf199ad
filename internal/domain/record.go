package domain

import "time"

// Record carries the identity and audit timestamps shared by persisted entities.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
