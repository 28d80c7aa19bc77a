package model

import "time"

// Profile is one tracked baby. Records point back to it by ID.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate time.Time `json:"birth_date"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	GenderBoy     = "boy"
	GenderGirl    = "girl"
	GenderUnknown = "unknown"
)

// ValidGenders are the allowed profile genders.
var ValidGenders = map[string]bool{
	GenderBoy:     true,
	GenderGirl:    true,
	GenderUnknown: true,
}
