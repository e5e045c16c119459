package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted from the model. Naive timestamps are treated as
// already being in the intended zone (UTC); a trailing "Z" is stripped
// before parsing so "2024-04-02T14:00:00Z" and "2024-04-02T14:00:00"
// normalize identically.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const apiTimeLayout = "2006-01-02T15:04:05Z"

// NormalizeToUTC converts an ISO-8601 string into the UTC "Z"-suffixed
// form the provider API expects.
func NormalizeToUTC(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("empty timestamp")
	}

	// Inputs carrying an explicit offset are real instants; convert.
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil && hasOffset(trimmed) {
		return t.UTC().Format(apiTimeLayout), nil
	}

	trimmed = strings.TrimSuffix(trimmed, "Z")

	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Format(apiTimeLayout), nil
		}
	}

	return "", fmt.Errorf("unable to parse timestamp %q", value)
}

// hasOffset reports whether the timestamp ends with a numeric zone
// offset such as "+02:00". A bare date like "2024-04-02" has dashes
// but no offset, so only the tail after the time separator counts.
func hasOffset(value string) bool {
	idx := strings.IndexByte(value, 'T')
	if idx == -1 {
		return false
	}
	tail := value[idx+1:]
	return strings.ContainsAny(tail, "+") || strings.Count(tail, "-") > 0
}
