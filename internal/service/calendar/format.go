package calendar

import (
	"fmt"
	"log"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"
)

const displayTimeLayout = "2006-01-02 15:04"

// FormatEventDetails renders a provider event into the fixed multi-line
// block shown to the user. Events whose timestamps cannot be parsed get
// a degraded block with whatever fields are present.
func FormatEventDetails(ev *calendarapi.Event) string {
	start, startErr := parseEventTime(ev.Start)
	end, endErr := parseEventTime(ev.End)
	if startErr != nil || endErr != nil {
		log.Printf("[calendar] error formatting event %s: start=%v end=%v", ev.Id, startErr, endErr)
		return fmt.Sprintf("Event ID: %s\nEvent: %s\nError formatting details\n",
			valueOr(ev.Id, "Unknown"), valueOr(ev.Summary, "Unknown"))
	}

	return fmt.Sprintf("Event ID: %s\nEvent: %s\nStart: %s\nEnd: %s\nDescription: %s\n",
		ev.Id,
		ev.Summary,
		start.Format(displayTimeLayout),
		end.Format(displayTimeLayout),
		valueOr(ev.Description, "No description"))
}

func parseEventTime(edt *calendarapi.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing event time")
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		// All-day events carry a bare date.
		return time.Parse("2006-01-02", edt.Date)
	}
	return time.Time{}, fmt.Errorf("event time has neither dateTime nor date")
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
