package instructions

import "time"

// DefaultContent is served until an operator saves their own instructions.
const DefaultContent = "You are a helpful Discord assistant."

type Instructions struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
