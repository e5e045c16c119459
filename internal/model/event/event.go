package event

// Details carries the fields required to create a calendar event.
// Times are ISO-8601 strings as produced by the model; normalization
// to UTC happens in the calendar service.
type Details struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description,omitempty"`
}

// MissingFields reports which required fields are absent, in a fixed
// order so questions to the user stay stable.
func (d Details) MissingFields() []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.StartTime == "" {
		missing = append(missing, "start_time")
	}
	if d.EndTime == "" {
		missing = append(missing, "end_time")
	}
	return missing
}
