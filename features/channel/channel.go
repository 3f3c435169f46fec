package channel

import "time"

// Channel is a Discord channel the bot is allowed to answer in.
type Channel struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
