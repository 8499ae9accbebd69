package scheduling

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	localLayout = "2006-01-02 15:04"
	// wireLayout renders UTC as +00:00 rather than Z.
	wireLayout = "2006-01-02T15:04:05-07:00"
)

// slotTimeLayouts are tried in order; the first that parses wins. Layouts
// without a zone yield UTC, which is the assumed zone for naive slot times.
var slotTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseSlotTime parses a slot timestamp permissively.
func ParseSlotTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range slotTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: value}
}

// parseBookingTime parses the service's UTC booking timestamps.
func parseBookingTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ParseError{Value: value}
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidDateTime, name)
	}
	return loc, nil
}

// Localize pairs a naive date (YYYY-MM-DD) and clock (HH:MM) with a zone.
// A wall clock that occurs twice at a fall-back transition resolves to the
// later, standard-time occurrence.
func Localize(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(localLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidDateTime, date, clock)
	}
	return laterOccurrence(t), nil
}

func laterOccurrence(t time.Time) time.Time {
	_, off := t.Zone()
	_, end := t.ZoneBounds()
	if end.IsZero() {
		return t
	}
	_, nextOff := end.Zone()
	if nextOff >= off {
		return t
	}
	alt := t.Add(time.Duration(off-nextOff) * time.Second)
	if alt.Format(localLayout) == t.Format(localLayout) {
		return alt
	}
	return t
}

// FormatUTC renders an instant the way the booking endpoint expects it.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(wireLayout)
}

func checkDate(date string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(date)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDateTime, date)
	}
	return nil
}
