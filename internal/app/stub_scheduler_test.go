package app

import (
	"context"
	"encoding/json"

	"meeting-assistant/internal/scheduling"
)

// stubScheduler returns canned values and records the arguments it was given.
type stubScheduler struct {
	types     []scheduling.MeetingType
	slots     []scheduling.AvailabilitySlot
	available bool
	booking   *scheduling.Booking
	bookings  []scheduling.Booking
	cancelID  int
	cancelRaw json.RawMessage
	err       error
	panicMsg  string

	gotBook      scheduling.BookRequest
	gotDuration  int
	gotTimezone  string
	gotCancelID  int
	gotTypeID    int
	cancelByTime []string
}

func (s *stubScheduler) ListMeetingTypes(context.Context) ([]scheduling.MeetingType, error) {
	return s.types, s.err
}

func (s *stubScheduler) DaySlots(_ context.Context, _, tz string, duration, typeID int) ([]scheduling.AvailabilitySlot, error) {
	s.gotTimezone, s.gotDuration, s.gotTypeID = tz, duration, typeID
	return s.slots, s.err
}

func (s *stubScheduler) CheckAvailability(_ context.Context, _, _ string, duration int, tz string) (bool, error) {
	s.gotDuration, s.gotTimezone = duration, tz
	return s.available, s.err
}

func (s *stubScheduler) Book(_ context.Context, req scheduling.BookRequest) (*scheduling.Booking, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.gotBook = req
	return s.booking, s.err
}

func (s *stubScheduler) ListBookings(_ context.Context, _, tz string) ([]scheduling.Booking, error) {
	s.gotTimezone = tz
	return s.bookings, s.err
}

func (s *stubScheduler) CancelBooking(_ context.Context, id int) (json.RawMessage, error) {
	s.gotCancelID = id
	return s.cancelRaw, s.err
}

func (s *stubScheduler) CancelByTime(_ context.Context, email, date, localTime, tz string) (int, json.RawMessage, error) {
	s.cancelByTime = []string{email, date, localTime, tz}
	return s.cancelID, s.cancelRaw, s.err
}
