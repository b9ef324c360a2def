package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the stored representation of event_date: no zone, seconds always present.
const TimestampLayout = "2006-01-02T15:04:05"

// DateTimeLocalLayout is the combined date+time value the edit form works with.
const DateTimeLocalLayout = "2006-01-02T15:04"

// Event display vocabulary. Stored as free text; the form constrains new values to this list.
const (
	EventTypeMusic    = "Música"
	EventTypeSports   = "Deportes"
	EventTypeFood     = "Gastronomía"
	EventTypeCultural = "Cultural"
)

var EventTypes = []string{EventTypeMusic, EventTypeSports, EventTypeFood, EventTypeCultural}

func IsKnownEventType(s string) bool {
	for _, t := range EventTypes {
		if t == s {
			return true
		}
	}
	return false
}

type Event struct {
	ID          string
	Description string
	Location    string
	EventType   string
	EventDate   time.Time
	ImageURL    *string
}

// EventPatch is the full set of fields the edit form writes back.
type EventPatch struct {
	Description string
	Location    string
	EventType   string
	EventDate   time.Time
	ImageURL    *string
}

// Apply returns a copy of e with the patch applied. Identity is never touched.
func (e Event) Apply(p EventPatch) Event {
	out := e
	out.Description = p.Description
	out.Location = p.Location
	out.EventType = p.EventType
	out.EventDate = p.EventDate
	out.ImageURL = p.ImageURL
	return out
}

// FormatTimestamp renders t in the stored representation.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts the stored representation plus the variants a hosted
// PostgREST backend may return (fractional seconds, explicit offsets).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		TimestampLayout,
		"2006-01-02T15:04:05.999999999",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		DateTimeLocalLayout,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func StringPtr(s string) *string { return &s }

// DerefString returns "" for nil.
func DerefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
