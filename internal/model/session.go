package model

import "time"

// Session marks a live timing session, such as a running feeding timer, so
// other processes can see it.
type Session struct {
	Category  Category  `json:"category"`
	ProfileID string    `json:"profile_id"`
	Side      Side      `json:"side,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
