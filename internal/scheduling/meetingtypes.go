package scheduling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

const DefaultDurationMinutes = 30

// MeetingType is a bookable offering (an event type on the service).
type MeetingType struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	DurationMinutes int    `json:"duration_minutes"`
	Hidden          bool   `json:"hidden"`
}

func newMeetingType(et calcom.EventType) MeetingType {
	return MeetingType{
		ID:              et.ID,
		Title:           et.Title,
		Slug:            et.Slug,
		DurationMinutes: et.Length,
		Hidden:          et.Hidden,
	}
}

// ListMeetingTypes returns the account's meeting types in service order.
func (s *Service) ListMeetingTypes(ctx context.Context) ([]MeetingType, error) {
	var resp calcom.EventTypesResponse
	q := url.Values{"username": {s.api.Username()}}
	if err := s.api.Do(ctx, http.MethodGet, "event-types", q, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]MeetingType, 0, len(resp.EventTypes))
	for _, et := range resp.EventTypes {
		out = append(out, newMeetingType(et))
	}
	s.logger.Debug("meeting types listed", zap.Int("count", len(out)))
	return out, nil
}

// SelectByDuration picks the meeting type whose duration is closest to
// target. Ties go to the first one listed.
func (s *Service) SelectByDuration(ctx context.Context, target int) (int, error) {
	types, err := s.ListMeetingTypes(ctx)
	if err != nil {
		return 0, err
	}
	mt, ok := closestDuration(types, target)
	if !ok {
		return 0, ErrNoMeetingTypes
	}
	return mt.ID, nil
}

func closestDuration(types []MeetingType, target int) (MeetingType, bool) {
	if len(types) == 0 {
		return MeetingType{}, false
	}
	best := types[0]
	bestDiff := absInt(best.DurationMinutes - target)
	for _, mt := range types[1:] {
		if d := absInt(mt.DurationMinutes - target); d < bestDiff {
			best, bestDiff = mt, d
		}
	}
	return best, true
}

// FirstAvailable returns the first listed meeting type. A zero duration from
// the service is reported as DefaultDurationMinutes.
func (s *Service) FirstAvailable(ctx context.Context) (MeetingType, error) {
	types, err := s.ListMeetingTypes(ctx)
	if err != nil {
		return MeetingType{}, err
	}
	if len(types) == 0 {
		return MeetingType{}, ErrNoMeetingTypes
	}
	mt := types[0]
	if mt.DurationMinutes <= 0 {
		mt.DurationMinutes = DefaultDurationMinutes
	}
	return mt, nil
}

// MeetingTypeDuration looks up a meeting type's duration. It never fails:
// unknown ids, unset durations, and fetch errors all yield the default.
func (s *Service) MeetingTypeDuration(ctx context.Context, id int) int {
	types, err := s.ListMeetingTypes(ctx)
	if err != nil {
		s.logger.Warn("meeting type lookup failed, using default duration", zap.Int("id", id), zap.Error(err))
		return DefaultDurationMinutes
	}
	for _, mt := range types {
		if mt.ID == id {
			if mt.DurationMinutes <= 0 {
				return DefaultDurationMinutes
			}
			return mt.DurationMinutes
		}
	}
	return DefaultDurationMinutes
}

// CreateDefaultMeetingType creates the fallback 30 minute meeting type.
func (s *Service) CreateDefaultMeetingType(ctx context.Context) (int, error) {
	s.logger.Warn("no meeting types found, creating default")
	req := calcom.CreateEventTypeRequest{
		Title:  "30 Minute Meeting",
		Slug:   "30min",
		Length: DefaultDurationMinutes,
		Hidden: false,
	}
	var resp calcom.EventTypeResponse
	if err := s.api.Do(ctx, http.MethodPost, "event-types", nil, req, &resp); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMeetingTypeCreationFailed, err)
	}
	if resp.EventType == nil || resp.EventType.ID == 0 {
		return 0, fmt.Errorf("%w: response carried no event type", ErrMeetingTypeCreationFailed)
	}
	return resp.EventType.ID, nil
}

// resolveMeetingType returns the first meeting type, creating the default
// one when the account has none.
func (s *Service) resolveMeetingType(ctx context.Context) (int, int, error) {
	mt, err := s.FirstAvailable(ctx)
	switch {
	case err == nil:
		return mt.ID, mt.DurationMinutes, nil
	case errors.Is(err, ErrNoMeetingTypes):
		id, err := s.CreateDefaultMeetingType(ctx)
		if err != nil {
			return 0, 0, err
		}
		return id, DefaultDurationMinutes, nil
	default:
		return 0, 0, err
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
