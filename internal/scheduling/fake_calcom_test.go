package scheduling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

// fakeCalcom is an in-memory stand-in for the Cal.com v1 endpoints the service uses.
type fakeCalcom struct {
	t  *testing.T
	mu sync.Mutex

	eventTypes       []calcom.EventType
	eventTypesStatus int
	createTypeStatus int
	slots            map[string][]calcom.Slot
	slotsStatus      int
	bookings         []calcom.Booking
	bookingStatus    int
	user             *calcom.User
	schedules        []calcom.Schedule

	createdTypes    []calcom.CreateEventTypeRequest
	createdBookings []calcom.CreateBookingRequest
	deleted         []string
	slotQueries     []url.Values
	calls           int
}

func newFakeCalcom(t *testing.T) (*fakeCalcom, *Service) {
	t.Helper()
	f := &fakeCalcom{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/event-types", f.listEventTypes)
	mux.HandleFunc("POST /v1/event-types", f.createEventType)
	mux.HandleFunc("GET /v1/slots", f.listSlots)
	mux.HandleFunc("GET /v1/bookings", f.listBookings)
	mux.HandleFunc("POST /v1/bookings", f.createBooking)
	mux.HandleFunc("DELETE /v1/bookings/{id}", f.deleteBooking)
	mux.HandleFunc("GET /v1/me", f.me)
	mux.HandleFunc("GET /v1/schedules", f.listSchedules)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := calcom.NewClient(calcom.Config{
		BaseURL:  srv.URL + "/v1",
		APIKey:   "cal_test_0123456789abcdef",
		Username: "alice",
	}, zap.NewNop())
	return f, NewService(client, zap.NewNop())
}

func (f *fakeCalcom) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCalcom) listEventTypes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventTypesStatus != 0 {
		writeJSON(w, f.eventTypesStatus, map[string]string{"message": "boom"})
		return
	}
	writeJSON(w, http.StatusOK, calcom.EventTypesResponse{EventTypes: f.eventTypes})
}

func (f *fakeCalcom) createEventType(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTypeStatus != 0 {
		writeJSON(w, f.createTypeStatus, map[string]string{"message": "forbidden"})
		return
	}
	var req calcom.CreateEventTypeRequest
	if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req)) {
		return
	}
	f.createdTypes = append(f.createdTypes, req)
	et := calcom.EventType{ID: 100 + len(f.createdTypes) - 1, Title: req.Title, Slug: req.Slug, Length: req.Length}
	f.eventTypes = append(f.eventTypes, et)
	writeJSON(w, http.StatusCreated, calcom.EventTypeResponse{EventType: &et})
}

func (f *fakeCalcom) listSlots(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotQueries = append(f.slotQueries, r.URL.Query())
	if f.slotsStatus != 0 {
		writeJSON(w, f.slotsStatus, map[string]string{"message": "slots unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, calcom.SlotsResponse{Slots: f.slots})
}

func (f *fakeCalcom) listBookings(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, calcom.BookingsResponse{Bookings: f.bookings})
}

func (f *fakeCalcom) createBooking(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookingStatus != 0 {
		writeJSON(w, f.bookingStatus, map[string]string{"message": "no_available_users_found_error"})
		return
	}
	var req calcom.CreateBookingRequest
	if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req)) {
		return
	}
	f.createdBookings = append(f.createdBookings, req)
	writeJSON(w, http.StatusOK, calcom.Booking{
		ID:          500 + len(f.createdBookings),
		EventTypeID: req.EventTypeID,
		StartTime:   req.Start,
		EndTime:     req.End,
		Status:      "ACCEPTED",
		Description: req.Responses.Notes,
		Attendees:   []calcom.Attendee{{Email: req.Responses.Email, Name: req.Responses.Name}},
	})
}

func (f *fakeCalcom) deleteBooking(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	f.deleted = append(f.deleted, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking with id " + id + " deleted"})
}

func (f *fakeCalcom) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid api key"})
		return
	}
	writeJSON(w, http.StatusOK, calcom.MeResponse{User: f.user})
}

func (f *fakeCalcom) listSchedules(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, calcom.SchedulesResponse{Schedules: f.schedules})
}
