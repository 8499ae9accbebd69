package scheduling

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

const bookingLanguage = "en"

// Booking is a reservation on the service plus its times in the caller's zone.
// When the service timestamps cannot be parsed the local fields hold the raw
// strings instead.
type Booking struct {
	ID            int    `json:"id"`
	UID           string `json:"uid,omitempty"`
	Title         string `json:"title,omitempty"`
	EventTypeID   int    `json:"event_type_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	AttendeeEmail string `json:"attendee_email,omitempty"`
	AttendeeName  string `json:"attendee_name,omitempty"`
	Notes         string `json:"notes,omitempty"`
	LocalStart    string `json:"local_start"`
	LocalEnd      string `json:"local_end"`
	DisplayTime   string `json:"display_time"`
}

// BookRequest carries already-structured booking arguments.
type BookRequest struct {
	Email    string
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Reason   string
	Timezone string
}

// Book creates a booking on the first meeting type, creating the default type
// if the account has none. It is not idempotent: two identical calls create
// two bookings.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	name, err := attendeeName(req.Email)
	if err != nil {
		return nil, err
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	start, err := Localize(req.Date, req.Time, loc)
	if err != nil {
		return nil, err
	}

	typeID, duration, err := s.resolveMeetingType(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.IsAvailable(ctx, req.Date, req.Time, duration, tz, typeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotUnavailable
	}

	end := start.Add(time.Duration(duration) * time.Minute)
	payload := calcom.CreateBookingRequest{
		EventTypeID: typeID,
		Start:       FormatUTC(start),
		End:         FormatUTC(end),
		Responses: calcom.BookingResponses{
			Name:  name,
			Email: req.Email,
			Notes: req.Reason,
		},
		TimeZone: tz,
		Language: bookingLanguage,
		Metadata: map[string]any{},
	}

	s.logger.Info("booking meeting",
		zap.Int("duration_min", duration),
		zap.String("email", req.Email),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
		zap.String("timezone", tz))

	var created calcom.Booking
	if err := s.api.Do(ctx, http.MethodPost, "bookings", nil, payload, &created); err != nil {
		return nil, err
	}
	b := s.newBooking(created, loc)
	return &b, nil
}

// attendeeName is the local part of the email.
func attendeeName(email string) (string, error) {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || domain == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return local, nil
}

func (s *Service) newBooking(b calcom.Booking, loc *time.Location) Booking {
	out := Booking{
		ID:          b.ID,
		UID:         b.UID,
		Title:       b.Title,
		EventTypeID: b.EventTypeID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		Notes:       b.Description,
	}
	if len(b.Attendees) > 0 {
		out.AttendeeEmail = b.Attendees[0].Email
		out.AttendeeName = b.Attendees[0].Name
	}

	start, err := parseBookingTime(b.StartTime)
	if err == nil {
		var end time.Time
		if end, err = parseBookingTime(b.EndTime); err == nil {
			out.LocalStart = start.In(loc).Format(localLayout)
			out.LocalEnd = end.In(loc).Format(clockLayout)
			out.DisplayTime = out.LocalStart + " - " + out.LocalEnd
			return out
		}
	}

	s.logger.Warn("error converting booking time", zap.Int("booking_id", b.ID), zap.Error(err))
	out.LocalStart = b.StartTime
	out.LocalEnd = b.EndTime
	out.DisplayTime = b.StartTime + " - " + b.EndTime
	return out
}
