package agent

import (
	"context"

	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
)

// Role names double as the identifiers the selector chooses between.
const (
	CalendarRoleName = "CalendarAgent"
	PlanningRoleName = "PlanningAgent"
	UserRoleName     = "User"
)

// Participant is one role in the group chat. ReceiveMessage updates the
// role's private view of the conversation; Speak produces the role's
// next message. Exactly one participant speaks at a time; the manager
// never calls Speak concurrently.
type Participant interface {
	Name() string
	Description() string
	ReceiveMessage(ctx context.Context, msg chat.Message)
	Speak(ctx context.Context) (chat.Message, error)
}

// Descriptor is the static identity handed to the selector.
type Descriptor struct {
	Name        string
	Description string
}
