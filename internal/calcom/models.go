package calcom

// Wire shapes of the v1 API. Only the fields the assistant reads are declared.

type EventType struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Length int    `json:"length"`
	Hidden bool   `json:"hidden"`
}

type EventTypesResponse struct {
	EventTypes []EventType `json:"event_types"`
}

type CreateEventTypeRequest struct {
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Length int    `json:"length"`
	Hidden bool   `json:"hidden"`
}

type EventTypeResponse struct {
	EventType *EventType `json:"event_type"`
}

// Slot is one bookable start time. Time is kept raw; its format varies.
type Slot struct {
	Time string `json:"time"`
}

// SlotsResponse maps YYYY-MM-DD to that day's slots.
type SlotsResponse struct {
	Slots map[string][]Slot `json:"slots"`
}

type Attendee struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	TimeZone string `json:"timeZone,omitempty"`
}

type Booking struct {
	ID          int        `json:"id"`
	UID         string     `json:"uid,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	EventTypeID int        `json:"eventTypeId"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Status      string     `json:"status"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

type BookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

type BookingResponses struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type CreateBookingRequest struct {
	EventTypeID int              `json:"eventTypeId"`
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Responses   BookingResponses `json:"responses"`
	TimeZone    string           `json:"timeZone"`
	Language    string           `json:"language"`
	Metadata    map[string]any   `json:"metadata"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
}

type MeResponse struct {
	User *User `json:"user"`
}

type Schedule struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	TimeZone string `json:"timeZone"`
}

type SchedulesResponse struct {
	Schedules []Schedule `json:"schedules"`
}
