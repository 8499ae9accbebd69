package scheduling

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

// AvailabilitySlot is a parsed slot expressed in the caller's zone.
type AvailabilitySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailableSlots fetches the open slots of one calendar day, 00:00:00 to
// 23:59:59 in tz. meetingTypeID 0 means no filter.
func (s *Service) AvailableSlots(ctx context.Context, date, tz string, meetingTypeID int) (map[string][]calcom.Slot, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	if tz == "" {
		tz = "UTC"
	}
	if _, err := LoadLocation(tz); err != nil {
		return nil, err
	}

	q := url.Values{
		"username":  {s.api.Username()},
		"startTime": {date + "T00:00:00"},
		"endTime":   {date + "T23:59:59"},
		"timeZone":  {tz},
	}
	if meetingTypeID != 0 {
		q.Set("eventTypeId", strconv.Itoa(meetingTypeID))
	}

	s.logger.Info("fetching available slots", zap.String("date", date), zap.String("timezone", tz))
	var resp calcom.SlotsResponse
	if err := s.api.Do(ctx, http.MethodGet, "slots", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Slots == nil {
		resp.Slots = map[string][]calcom.Slot{}
	}
	return resp.Slots, nil
}

// DaySlots returns the parsed slots of date in tz, each spanning duration
// minutes. Unparsable entries are skipped.
func (s *Service) DaySlots(ctx context.Context, date, tz string, durationMinutes, meetingTypeID int) ([]AvailabilitySlot, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	slots, err := s.AvailableSlots(ctx, date, tz, meetingTypeID)
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	return s.parseSlots(slots[date], loc, time.Duration(durationMinutes)*time.Minute), nil
}

func (s *Service) parseSlots(raw []calcom.Slot, loc *time.Location, d time.Duration) []AvailabilitySlot {
	out := make([]AvailabilitySlot, 0, len(raw))
	for _, slot := range raw {
		if slot.Time == "" {
			continue
		}
		start, err := ParseSlotTime(slot.Time)
		if err != nil {
			s.logger.Warn("could not parse slot time", zap.Error(err))
			continue
		}
		start = start.In(loc)
		out = append(out, AvailabilitySlot{Start: start, End: start.Add(d)})
	}
	return out
}

// IsAvailable reports whether a slot starts exactly at date+localTime in tz.
// It fails closed: a fetch error or an empty day is "not available".
// Only the start instant is compared; a slot that merely overlaps the
// requested interval does not count.
func (s *Service) IsAvailable(ctx context.Context, date, localTime string, durationMinutes int, tz string, meetingTypeID int) (bool, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return false, err
	}
	start, err := Localize(date, localTime, loc)
	if err != nil {
		return false, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	slots, err := s.AvailableSlots(ctx, date, loc.String(), meetingTypeID)
	if err != nil {
		s.logger.Warn("slot fetch failed, treating as unavailable", zap.String("date", date), zap.Error(err))
		return false, nil
	}
	day := slots[date]
	if len(day) == 0 {
		s.logger.Warn("no available slots found", zap.String("date", date))
		return false, nil
	}

	s.logger.Info("checking availability", zap.Time("start", start), zap.Time("end", end))
	for _, slot := range s.parseSlots(day, loc, end.Sub(start)) {
		if slot.Start.Equal(start) {
			s.logger.Info("found matching slot", zap.Time("slot", slot.Start))
			return true, nil
		}
	}
	return false, nil
}

// CheckAvailability checks a slot for an explicit duration, filtering on the
// meeting type whose duration is closest. Without any meeting types the
// check runs unfiltered. Like IsAvailable it fails closed: a meeting type
// fetch error is "not available".
func (s *Service) CheckAvailability(ctx context.Context, date, localTime string, durationMinutes int, tz string) (bool, error) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return false, err
	}
	if _, err := Localize(date, localTime, loc); err != nil {
		return false, err
	}

	typeID, err := s.SelectByDuration(ctx, durationMinutes)
	if err != nil && !errors.Is(err, ErrNoMeetingTypes) {
		s.logger.Warn("meeting type fetch failed, treating as unavailable", zap.String("date", date), zap.Error(err))
		return false, nil
	}
	return s.IsAvailable(ctx, date, localTime, durationMinutes, tz, typeID)
}
