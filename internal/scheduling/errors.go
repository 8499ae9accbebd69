package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrNoMeetingTypes            = errors.New("no meeting types configured")
	ErrMeetingTypeCreationFailed = errors.New("failed to create default meeting type")
	ErrSlotUnavailable           = errors.New("time slot not available")
	ErrInvalidDateTime           = errors.New("invalid date/time format")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrBookingNotFound           = errors.New("no booking found at that time")
)

// ParseError is a per-item timestamp failure. Callers log it and keep going.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable timestamp %q", e.Value)
}
