package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"meeting-assistant/internal/calcom"
	"meeting-assistant/internal/scheduling"
)

// Error kinds reported to the dispatcher.
const (
	KindTransport                 = "transport"
	KindNoMeetingTypes            = "no_meeting_types"
	KindMeetingTypeCreationFailed = "meeting_type_creation_failed"
	KindSlotUnavailable           = "slot_unavailable"
	KindInvalidDateTime           = "invalid_datetime"
	KindParseFailure              = "parse_failure"
	KindBookingNotFound           = "booking_not_found"
	KindInvalidArgument           = "invalid_argument"
	KindCanceled                  = "canceled"
	KindInternal                  = "internal"
)

var errInvalidArgument = errors.New("invalid argument")

// ErrorBody is the uniform error object returned across the dispatcher boundary.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"error"`
	Status  int    `json:"status,omitempty"`
}

// Describe maps any error to a kind, a chat-displayable message, and an HTTP status.
func Describe(err error) ErrorBody {
	var (
		terr *calcom.TransportError
		perr *scheduling.ParseError
	)
	switch {
	case errors.Is(err, scheduling.ErrMeetingTypeCreationFailed):
		msg := "Failed to create default event type"
		if errors.As(err, &terr) {
			msg += ": " + transportMessage(terr)
		}
		return ErrorBody{KindMeetingTypeCreationFailed, msg, http.StatusBadGateway}
	case errors.Is(err, scheduling.ErrNoMeetingTypes):
		return ErrorBody{KindNoMeetingTypes, "No meeting types are configured for this account", http.StatusUnprocessableEntity}
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		return ErrorBody{KindSlotUnavailable, "Time slot not available", http.StatusConflict}
	case errors.Is(err, scheduling.ErrInvalidDateTime):
		return ErrorBody{KindInvalidDateTime, err.Error(), http.StatusBadRequest}
	case errors.Is(err, scheduling.ErrBookingNotFound):
		return ErrorBody{KindBookingNotFound, "No booking found at that time", http.StatusNotFound}
	case errors.Is(err, scheduling.ErrInvalidEmail), errors.Is(err, errInvalidArgument):
		return ErrorBody{KindInvalidArgument, err.Error(), http.StatusBadRequest}
	case errors.As(err, &terr):
		return ErrorBody{KindTransport, transportMessage(terr), http.StatusBadGateway}
	case errors.As(err, &perr):
		return ErrorBody{KindParseFailure, perr.Error(), http.StatusBadGateway}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorBody{KindCanceled, "The request was canceled", http.StatusServiceUnavailable}
	default:
		return ErrorBody{KindInternal, "Something went wrong: " + err.Error(), http.StatusInternalServerError}
	}
}

func transportMessage(e *calcom.TransportError) string {
	switch e.Kind {
	case calcom.KindHTTPStatus:
		return fmt.Sprintf("API request failed: %d: %s", e.Status, e.Body)
	case calcom.KindNetwork:
		return "Could not reach the scheduling service"
	case calcom.KindDecode:
		return "The scheduling service returned an unexpected response"
	default:
		return e.Error()
	}
}
