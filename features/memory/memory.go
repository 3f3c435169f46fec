package memory

import "time"

// DefaultScope is used when a request carries no channel ID, so all
// un-scoped traffic shares one rolling summary.
const DefaultScope = "default"

type Memory struct {
	ScopeID      string    `json:"scope_id"`
	Summary      string    `json:"summary"`
	MessageCount int       `json:"message_count"`
	LastUpdated  time.Time `json:"last_updated"`
}
