package chat

import "time"

// Message is one turn in the shared conversation. Source identifies the
// role that produced it (CalendarAgent, PlanningAgent, User). Messages
// are immutable once appended; ordering is append order.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
