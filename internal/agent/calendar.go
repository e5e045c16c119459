package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
)

const calendarSystemPromptTemplate = `You are a helpful scheduling assistant.

IMPORTANT: You MUST use the provided functions to perform calendar operations. Do not just say you've done something - actually call the function.

You have access to the following functions:
- add_event: Add a new event to the calendar
- get_events: Get events in a time range
- delete_event: Delete an event

When adding events, you need:
- title: Event title
- start_time: Start time in ISO format
- end_time: End time in ISO format
- description (optional): Event description

When getting events, provide time_min and time_max in ISO format.
When deleting events, provide the event_id from the event details, or the exact event title.

When using relative dates, convert them to the actual date.
For example, if they say "next week", you need to convert that to the date.
Today is %s`

// CalendarAgent executes calendar operations through tool calls. The
// model it holds has the three calendar tools bound; other roles use
// their own model instances so the binding stays local.
type CalendarAgent struct {
	description  string
	chatModel    model.ChatModel
	tools        map[string]tool.InvokableTool
	systemPrompt string
	history      []*schema.Message
}

// NewCalendarAgent binds the calendar tools to the model and prepares
// the role's system prompt with today's date.
func NewCalendarAgent(ctx context.Context, chatModel model.ChatModel, tools []tool.InvokableTool, now func() time.Time) (*CalendarAgent, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	byName := make(map[string]tool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
		byName[info.Name] = t
	}

	if err := chatModel.BindTools(infos); err != nil {
		return nil, fmt.Errorf("bind calendar tools: %w", err)
	}

	if now == nil {
		now = time.Now
	}

	return &CalendarAgent{
		description:  "Calendar agent for managing calendar operations",
		chatModel:    chatModel,
		tools:        byName,
		systemPrompt: fmt.Sprintf(calendarSystemPromptTemplate, now().Format("2006-01-02")),
	}, nil
}

func (a *CalendarAgent) Name() string        { return CalendarRoleName }
func (a *CalendarAgent) Description() string { return a.description }

// ReceiveMessage records another role's message in this agent's view.
func (a *CalendarAgent) ReceiveMessage(_ context.Context, msg chat.Message) {
	a.history = append(a.history,
		schema.UserMessage(fmt.Sprintf("Transferred to %s", msg.Source)),
		schema.UserMessage(msg.Content),
	)
}

// Speak generates a completion with tool use and executes every tool
// call it returns, publishing the joined results.
func (a *CalendarAgent) Speak(ctx context.Context) (chat.Message, error) {
	a.history = append(a.history,
		schema.UserMessage(fmt.Sprintf("Transferred to %s, adopt the persona immediately.", CalendarRoleName)))

	messages := make([]*schema.Message, 0, len(a.history)+1)
	messages = append(messages, schema.SystemMessage(a.systemPrompt))
	messages = append(messages, a.history...)

	completion, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return chat.Message{}, fmt.Errorf("calendar completion: %w", err)
	}

	content := completion.Content
	if len(completion.ToolCalls) > 0 {
		results := make([]string, 0, len(completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			result, execErr := a.execute(ctx, call)
			if execErr != nil {
				return chat.Message{}, execErr
			}
			results = append(results, result)
		}
		content = strings.Join(results, "\n")
	} else {
		log.Printf("[calendar] model returned no tool calls, publishing content as-is")
	}

	a.history = append(a.history, schema.AssistantMessage(content, nil))
	return chat.Message{Source: CalendarRoleName, Content: content}, nil
}

func (a *CalendarAgent) execute(ctx context.Context, call schema.ToolCall) (string, error) {
	t, ok := a.tools[call.Function.Name]
	if !ok {
		return "", fmt.Errorf("model requested unknown tool %q", call.Function.Name)
	}

	log.Printf("[calendar] executing tool %s with args %s", call.Function.Name, call.Function.Arguments)
	result, err := t.InvokableRun(ctx, call.Function.Arguments)
	if err != nil {
		return "", fmt.Errorf("run tool %s: %w", call.Function.Name, err)
	}
	return result, nil
}
