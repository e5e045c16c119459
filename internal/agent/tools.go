package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/tom-bou/speech-schedulin-assistant/internal/model/event"
	calendarservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/calendar"
)

// Tool names the calendar role exposes to the model.
const (
	addEventToolName    = "add_event"
	getEventsToolName   = "get_events"
	deleteEventToolName = "delete_event"
)

type addEventArgs struct {
	Title       string `json:"title" jsonschema:"description=Event title"`
	StartTime   string `json:"start_time" jsonschema:"description=Start time in ISO format"`
	EndTime     string `json:"end_time" jsonschema:"description=End time in ISO format"`
	Description string `json:"description,omitempty" jsonschema:"description=Optional event description"`
}

type getEventsArgs struct {
	TimeMin string `json:"time_min" jsonschema:"description=Range start in ISO format"`
	TimeMax string `json:"time_max" jsonschema:"description=Range end in ISO format"`
}

type deleteEventArgs struct {
	EventID string `json:"event_id" jsonschema:"description=Event ID from the event details, or the exact event title"`
}

// calendarTools adapts the calendar client's typed results into the
// user-readable strings the model replays into the conversation.
type calendarTools struct {
	client *calendarservice.Client
}

// NewCalendarTools binds the three calendar operations as invokable
// tools, in the order the role advertises them.
func NewCalendarTools(client *calendarservice.Client) ([]tool.InvokableTool, error) {
	t := &calendarTools{client: client}

	addTool, err := utils.InferTool(addEventToolName, "Add a new event to the calendar", t.addEvent)
	if err != nil {
		return nil, fmt.Errorf("infer %s tool: %w", addEventToolName, err)
	}

	getTool, err := utils.InferTool(getEventsToolName, "Get events in a time range", t.getEvents)
	if err != nil {
		return nil, fmt.Errorf("infer %s tool: %w", getEventsToolName, err)
	}

	deleteTool, err := utils.InferTool(deleteEventToolName, "Delete an event from the calendar", t.deleteEvent)
	if err != nil {
		return nil, fmt.Errorf("infer %s tool: %w", deleteEventToolName, err)
	}

	return []tool.InvokableTool{addTool, getTool, deleteTool}, nil
}

func (t *calendarTools) addEvent(ctx context.Context, args *addEventArgs) (string, error) {
	log.Printf("[calendar] add_event title=%q start=%s end=%s", args.Title, args.StartTime, args.EndTime)

	err := t.client.AddEvent(ctx, event.Details{
		Title:       args.Title,
		StartTime:   args.StartTime,
		EndTime:     args.EndTime,
		Description: args.Description,
	})
	if err != nil {
		log.Printf("[calendar] add_event failed: %v", err)
		return "Failed to add event to calendar", nil
	}
	return "Event successfully added to calendar", nil
}

func (t *calendarTools) getEvents(ctx context.Context, args *getEventsArgs) (string, error) {
	events, err := t.client.ListEvents(ctx, args.TimeMin, args.TimeMax)
	if err != nil {
		log.Printf("[calendar] get_events failed: %v", err)
		return fmt.Sprintf("Error getting events: %v", err), nil
	}
	if len(events) == 0 {
		return "No events found in the specified time range", nil
	}

	formatted := make([]string, 0, len(events))
	for _, ev := range events {
		formatted = append(formatted, calendarservice.FormatEventDetails(ev))
	}
	return strings.Join(formatted, "\n"), nil
}

func (t *calendarTools) deleteEvent(ctx context.Context, args *deleteEventArgs) (string, error) {
	err := t.client.DeleteEvent(ctx, args.EventID)
	switch {
	case errors.Is(err, calendarservice.ErrEventNotFound):
		log.Printf("[calendar] delete_event: %v", err)
		return "Failed to delete event from calendar", nil
	case err != nil:
		log.Printf("[calendar] delete_event failed: %v", err)
		return "Failed to delete event from calendar", nil
	}
	return "Event successfully deleted from calendar", nil
}
