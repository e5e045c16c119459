package calendar

import (
	"context"
	"net/http"

	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// googleEventsAPI adapts *calendarapi.Service to EventsAPI for a single
// calendar id.
type googleEventsAPI struct {
	svc        *calendarapi.Service
	calendarID string
}

// NewGoogleEventsAPI builds the provider adapter from an authenticated
// HTTP client.
func NewGoogleEventsAPI(ctx context.Context, httpClient *http.Client, calendarID string) (EventsAPI, error) {
	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &googleEventsAPI{svc: svc, calendarID: calendarID}, nil
}

func (g *googleEventsAPI) List(ctx context.Context, timeMin, timeMax string) ([]*calendarapi.Event, error) {
	result, err := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (g *googleEventsAPI) Insert(ctx context.Context, ev *calendarapi.Event) (*calendarapi.Event, error) {
	return g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
}

func (g *googleEventsAPI) Delete(ctx context.Context, eventID string) error {
	return g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do()
}
