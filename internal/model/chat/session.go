package chat

import "time"

// Session captures one scheduling conversation from the first user
// message until approval or the message ceiling.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
