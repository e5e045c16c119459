package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/tom-bou/speech-schedulin-assistant/internal/model/event"
	calendarapi "google.golang.org/api/calendar/v3"
)

// ErrEventNotFound marks a delete request whose id could not be
// resolved, as opposed to a provider failure.
var ErrEventNotFound = errors.New("event not found")

// How far ahead a title lookup searches when no window is given.
const defaultLookupWindow = 30 * 24 * time.Hour

var eventIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// EventsAPI is the slice of the provider event API the client needs.
// The Google adapter implements it; tests substitute a fake.
type EventsAPI interface {
	List(ctx context.Context, timeMin, timeMax string) ([]*calendarapi.Event, error)
	Insert(ctx context.Context, ev *calendarapi.Event) (*calendarapi.Event, error)
	Delete(ctx context.Context, eventID string) error
}

// Client wraps the provider event API with the three operations the
// calendar role exposes as tools. Provider failures surface as errors;
// callers decide how to present them.
type Client struct {
	api EventsAPI
	now func() time.Time
}

// NewClient builds a calendar client over the given provider API.
func NewClient(api EventsAPI) *Client {
	return &Client{api: api, now: time.Now}
}

// ListEvents returns all events between timeMin and timeMax. Both
// bounds are normalized to UTC before the provider call.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax string) ([]*calendarapi.Event, error) {
	min, err := NormalizeToUTC(timeMin)
	if err != nil {
		return nil, fmt.Errorf("invalid time_min: %w", err)
	}
	max, err := NormalizeToUTC(timeMax)
	if err != nil {
		return nil, fmt.Errorf("invalid time_max: %w", err)
	}

	log.Printf("[calendar] fetching events from %s to %s", min, max)
	events, err := c.api.List(ctx, min, max)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	log.Printf("[calendar] found %d events", len(events))
	return events, nil
}

// AddEvent creates a new event from the supplied details. Title, start
// and end are required; times are normalized to UTC.
func (c *Client) AddEvent(ctx context.Context, details event.Details) error {
	if missing := details.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	start, err := NormalizeToUTC(details.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := NormalizeToUTC(details.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time: %w", err)
	}

	ev := &calendarapi.Event{
		Summary:     details.Title,
		Description: details.Description,
		Start:       &calendarapi.EventDateTime{DateTime: start, TimeZone: "UTC"},
		End:         &calendarapi.EventDateTime{DateTime: end, TimeZone: "UTC"},
	}

	log.Printf("[calendar] adding event %q from %s to %s", details.Title, start, end)
	if _, err := c.api.Insert(ctx, ev); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by id, or by title lookup when the
// argument does not look like an event id. Returns ErrEventNotFound
// when a title resolves to nothing.
func (c *Client) DeleteEvent(ctx context.Context, idOrTitle string) error {
	eventID := idOrTitle
	if !eventIDPattern.MatchString(idOrTitle) {
		log.Printf("[calendar] searching for event with title %q", idOrTitle)
		id, err := c.FindEventByTitle(ctx, idOrTitle, "", "")
		if err != nil {
			return err
		}
		eventID = id
	}

	log.Printf("[calendar] deleting event %s", eventID)
	if err := c.api.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

// FindEventByTitle resolves an event id by case-insensitive exact match
// against event summaries. The provider returns events ordered by start
// time, so on duplicate titles the earliest-starting event wins. An
// empty window defaults to the next 30 days.
func (c *Client) FindEventByTitle(ctx context.Context, title, timeMin, timeMax string) (string, error) {
	now := c.now().UTC()
	if timeMin == "" {
		timeMin = now.Format(apiTimeLayout)
	}
	if timeMax == "" {
		timeMax = now.Add(defaultLookupWindow).Format(apiTimeLayout)
	}

	events, err := c.api.List(ctx, timeMin, timeMax)
	if err != nil {
		return "", fmt.Errorf("find event by title: %w", err)
	}

	for _, ev := range events {
		if strings.EqualFold(ev.Summary, title) {
			log.Printf("[calendar] found event %s for title %q", ev.Id, title)
			return ev.Id, nil
		}
	}

	return "", fmt.Errorf("no event titled %q: %w", title, ErrEventNotFound)
}
