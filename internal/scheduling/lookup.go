package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

const StatusCancelled = "CANCELLED"

// ListBookings returns the non-cancelled bookings of email with times
// converted to tz.
func (s *Service) ListBookings(ctx context.Context, email, tz string) ([]Booking, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	s.logger.Info("listing bookings", zap.String("email", email))
	var resp calcom.BookingsResponse
	if err := s.api.Do(ctx, http.MethodGet, "bookings", url.Values{"email": {email}}, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Booking, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		if strings.EqualFold(b.Status, StatusCancelled) {
			continue
		}
		out = append(out, s.newBooking(b, loc))
	}
	return out, nil
}

// FindBookingID returns the first active booking of email starting at
// date+localTime in tz, compared at minute precision. found is false when
// nothing matches; that is not an error.
func (s *Service) FindBookingID(ctx context.Context, email, date, localTime, tz string) (id int, found bool, err error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return 0, false, err
	}
	target, err := Localize(date, localTime, loc)
	if err != nil {
		return 0, false, err
	}

	bookings, err := s.ListBookings(ctx, email, tz)
	if err != nil {
		return 0, false, err
	}
	for _, b := range bookings {
		got, err := time.ParseInLocation(localLayout, b.LocalStart, loc)
		if err != nil {
			s.logger.Warn("skipping booking with unparsable local start",
				zap.Int("booking_id", b.ID), zap.String("local_start", b.LocalStart))
			continue
		}
		if got.Equal(target) {
			return b.ID, true, nil
		}
	}
	return 0, false, nil
}

// CancelBooking deletes a booking. Repeat cancellations are left to the service.
func (s *Service) CancelBooking(ctx context.Context, id int) (json.RawMessage, error) {
	s.logger.Info("cancelling booking", zap.Int("booking_id", id))
	return s.api.Request(ctx, http.MethodDelete, "bookings/"+strconv.Itoa(id), nil, nil)
}

// CancelByTime resolves the booking at date+localTime and cancels it.
func (s *Service) CancelByTime(ctx context.Context, email, date, localTime, tz string) (int, json.RawMessage, error) {
	id, found, err := s.FindBookingID(ctx, email, date, localTime, tz)
	if err != nil {
		return 0, nil, err
	}
	if !found {
		return 0, nil, ErrBookingNotFound
	}
	raw, err := s.CancelBooking(ctx, id)
	return id, raw, err
}
