package scheduling

import (
	"context"
	"errors"
	"net/http"

	"meeting-assistant/internal/calcom"
)

// CurrentUser returns the account the API key belongs to. It doubles as a
// credential check.
func (s *Service) CurrentUser(ctx context.Context) (*calcom.User, error) {
	var resp calcom.MeResponse
	if err := s.api.Do(ctx, http.MethodGet, "me", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &calcom.TransportError{
			Kind:   calcom.KindDecode,
			Method: http.MethodGet,
			URL:    "me",
			Err:    errors.New("response carried no user"),
		}
	}
	return resp.User, nil
}

// DefaultScheduleID returns the id of the first schedule, if any.
func (s *Service) DefaultScheduleID(ctx context.Context) (int, bool, error) {
	var resp calcom.SchedulesResponse
	if err := s.api.Do(ctx, http.MethodGet, "schedules", nil, nil, &resp); err != nil {
		return 0, false, err
	}
	if len(resp.Schedules) == 0 {
		return 0, false, nil
	}
	return resp.Schedules[0].ID, true, nil
}
