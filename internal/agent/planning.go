package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
)

const planningSystemPromptTemplate = `You are a helpful scheduling assistant. Your role is to:
1. Process user requests for scheduling tasks
2. Validate required information for scheduling
3. Generate appropriate questions when information is missing
4. Coordinate with the calendar agent to perform operations on the calendar
5. Provide clear responses to the user

When planning events, you need to ensure:
- All required information is collected (title, start time, end time)
- That there is no conflict; when you know the dates you need to check the calendar by asking the calendar agent
- When you know the calendar and your task, give recommendations on the best time to do the task

When using relative dates, convert them to the actual date.
For example, if they say "next week", you need to convert that to the date.
Today is %s

IMPORTANT: Store all times in UTC format (e.g., "2024-04-02T14:00:00Z")`

// PlanningAgent coordinates the scheduling conversation: it collects
// missing details, asks the calendar role to act, and summarizes for
// the user.
type PlanningAgent struct {
	description  string
	chatModel    model.ChatModel
	systemPrompt string
	history      []*schema.Message
}

// NewPlanningAgent prepares the planner with today's date in its
// system prompt.
func NewPlanningAgent(chatModel model.ChatModel, now func() time.Time) *PlanningAgent {
	if now == nil {
		now = time.Now
	}
	return &PlanningAgent{
		description:  "Planning agent for coordinating scheduling tasks",
		chatModel:    chatModel,
		systemPrompt: fmt.Sprintf(planningSystemPromptTemplate, now().Format("2006-01-02")),
	}
}

func (a *PlanningAgent) Name() string        { return PlanningRoleName }
func (a *PlanningAgent) Description() string { return a.description }

// ReceiveMessage records another role's message in this agent's view.
func (a *PlanningAgent) ReceiveMessage(_ context.Context, msg chat.Message) {
	a.history = append(a.history,
		schema.UserMessage(fmt.Sprintf("Transferred to %s", msg.Source)),
		schema.UserMessage(msg.Content),
	)
}

// Speak produces a plain completion over the private history.
func (a *PlanningAgent) Speak(ctx context.Context) (chat.Message, error) {
	a.history = append(a.history,
		schema.UserMessage(fmt.Sprintf("Transferred to %s, adopt the persona immediately.", PlanningRoleName)))

	messages := make([]*schema.Message, 0, len(a.history)+1)
	messages = append(messages, schema.SystemMessage(a.systemPrompt))
	messages = append(messages, a.history...)

	completion, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return chat.Message{}, fmt.Errorf("planning completion: %w", err)
	}

	a.history = append(a.history, schema.AssistantMessage(completion.Content, nil))

	return chat.Message{Source: PlanningRoleName, Content: completion.Content}, nil
}
