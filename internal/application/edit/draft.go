package edit

import (
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Draft is the uncommitted copy of an event's editable fields.
type Draft struct {
	EventID     string
	Description string
	Location    string
	EventType   string
	Date        string // 2006-01-02
	Time        string // 15:04
	// ImagePreview is the remote image URL, or a data: URL once a crop is confirmed.
	ImagePreview string

	pending  *crop.Blob
	original domain.Event
}

// splitTimestamp takes the date part and the first five characters of the time part
// of the stored representation.
func splitTimestamp(t time.Time) (string, string) {
	date, clock, _ := strings.Cut(domain.FormatTimestamp(t), "T")
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return date, clock
}

func NewDraft(ev domain.Event) Draft {
	date, clock := splitTimestamp(ev.EventDate)
	return Draft{
		EventID:      ev.ID,
		Description:  ev.Description,
		Location:     ev.Location,
		EventType:    ev.EventType,
		Date:         date,
		Time:         clock,
		ImagePreview: domain.DerefString(ev.ImageURL),
		original:     ev,
	}
}

// DateTimeLocal is the combined value shown in the form.
func (d Draft) DateTimeLocal() string { return d.Date + "T" + d.Time }

func (d Draft) HasPendingImage() bool { return d.pending != nil }

// Fields is a partial form update; nil means unchanged.
type Fields struct {
	Description *string
	Location    *string
	EventType   *string
	DateTime    *string
}

func (d *Draft) apply(f Fields) error {
	next := *d

	if f.Description != nil {
		next.Description = strings.TrimSpace(*f.Description)
		if next.Description == "" {
			return domain.ErrMissingField("description")
		}
	}
	if f.Location != nil {
		next.Location = strings.TrimSpace(*f.Location)
	}
	if f.EventType != nil {
		v := strings.TrimSpace(*f.EventType)
		if v != d.original.EventType && !domain.IsKnownEventType(v) {
			return domain.ErrInvalidField("event_type", "unknown event type")
		}
		next.EventType = v
	}
	if f.DateTime != nil {
		t, err := time.Parse(domain.DateTimeLocalLayout, strings.TrimSpace(*f.DateTime))
		if err != nil {
			return domain.ErrInvalidField("event_date", "expected YYYY-MM-DDTHH:MM")
		}
		next.Date, next.Time = t.Format("2006-01-02"), t.Format("15:04")
	}

	*d = next
	return nil
}

// eventDate rebuilds the stored timestamp. An untouched date and time returns the
// original value so an unchanged save is an exact round trip.
func (d Draft) eventDate() (time.Time, error) {
	origDate, origTime := splitTimestamp(d.original.EventDate)
	if d.Date == origDate && d.Time == origTime {
		return d.original.EventDate, nil
	}
	t, err := time.ParseInLocation(domain.DateTimeLocalLayout, d.DateTimeLocal(), d.original.EventDate.Location())
	if err != nil {
		return time.Time{}, domain.ErrInvalidField("event_date", "expected YYYY-MM-DDTHH:MM")
	}
	return t, nil
}

// submit produces the record update for the draft with the given final image reference.
func (d Draft) submit(imageURL *string) (domain.EventPatch, error) {
	when, err := d.eventDate()
	if err != nil {
		return domain.EventPatch{}, err
	}
	return domain.EventPatch{
		Description: d.Description,
		Location:    d.Location,
		EventType:   d.EventType,
		EventDate:   when,
		ImageURL:    imageURL,
	}, nil
}
