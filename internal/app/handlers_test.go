package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
	"meeting-assistant/internal/scheduling"
)

const testToken = "tok-123"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, stub *stubScheduler, opts RouterOptions) *gin.Engine {
	t.Helper()
	r, err := New(stub, zap.NewNop()).Router(opts)
	require.NoError(t, err)
	return r
}

func newTestRouter(t *testing.T, stub *stubScheduler) *gin.Engine {
	return newRouter(t, stub, RouterOptions{StaticTokens: []string{testToken}})
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuth(t *testing.T) {
	r := newTestRouter(t, &stubScheduler{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Token "+testToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/tools", "").Code)
}

func TestAuthJWT(t *testing.T) {
	secret := "hmac-secret"
	r := newRouter(t, &stubScheduler{}, RouterOptions{JWTSecret: secret})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "dispatcher",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthDisabled(t *testing.T) {
	r := newRouter(t, &stubScheduler{}, RouterOptions{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tools", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := newRouter(t, &stubScheduler{}, RouterOptions{StaticTokens: []string{testToken}, RateLimitPerMin: 2})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/tools", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/tools", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodGet, "/api/tools", "").Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	r := newRouter(t, &stubScheduler{}, RouterOptions{StaticTokens: []string{testToken}, RateLimitPerMin: 2})

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("Authorization", "Bearer "+testToken)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
	assert.Equal(t, 2, allowed)
}

func TestRateLimitTrustedProxy(t *testing.T) {
	r := newRouter(t, &stubScheduler{}, RouterOptions{
		StaticTokens:    []string{testToken},
		RateLimitPerMin: 1,
		TrustedProxies:  []string{"10.0.0.1"},
	})

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("Authorization", "Bearer "+testToken)
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}

func TestRouterRejectsBadProxy(t *testing.T) {
	_, err := New(&stubScheduler{}, zap.NewNop()).Router(RouterOptions{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		assert.True(t, rl.Allow(fmt.Sprintf("198.51.100.%d", i)))
	}
	assert.False(t, rl.Allow("198.51.100.0"))
	assert.Equal(t, 50, rl.size())

	now = now.Add(limiterIdleTTL + time.Minute)
	assert.True(t, rl.Allow("203.0.113.1"))
	assert.Equal(t, 1, rl.size())
}

func TestCreateBookingHandler(t *testing.T) {
	stub := &stubScheduler{booking: &scheduling.Booking{ID: 501, Status: "ACCEPTED"}}
	r := newTestRouter(t, stub)

	w := do(t, r, http.MethodPost, "/api/bookings",
		`{"email":"bob@example.com","date":"2024-06-01","time":"11:00","timezone":"America/Los_Angeles"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(501), decodeBody(t, w)["id"])
	assert.Equal(t, "America/Los_Angeles", stub.gotBook.Timezone)

	w = do(t, r, http.MethodPost, "/api/bookings", `{"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, KindInvalidArgument, decodeBody(t, w)["kind"])

	stub.err = scheduling.ErrSlotUnavailable
	w = do(t, r, http.MethodPost, "/api/bookings", `{"email":"bob@example.com","date":"2024-06-01","time":"11:00"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, KindSlotUnavailable, body["kind"])
	assert.Equal(t, "Time slot not available", body["error"])
}

func TestReadHandlers(t *testing.T) {
	stub := &stubScheduler{
		types:     []scheduling.MeetingType{{ID: 1, Title: "30 Minute Meeting", DurationMinutes: 30}},
		available: true,
		bookings:  []scheduling.Booking{{ID: 9}},
	}
	r := newTestRouter(t, stub)

	w := do(t, r, http.MethodGet, "/api/meeting-types", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "30 Minute Meeting")

	w = do(t, r, http.MethodGet, "/api/slots?date=2024-06-01&timezone=UTC&event_type_id=4&duration=15", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, stub.gotTypeID)
	assert.Equal(t, 15, stub.gotDuration)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/slots", "").Code)

	w = do(t, r, http.MethodGet, "/api/availability?date=2024-06-01&time=09:00&duration=60&timezone=UTC", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, stub.gotDuration)
	assert.Equal(t, true, decodeBody(t, w)["data"].(map[string]any)["available"])

	w = do(t, r, http.MethodGet, "/api/bookings?email=a@b.com&timezone=Asia/Tokyo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asia/Tokyo", stub.gotTimezone)

	stub.err = &calcom.TransportError{Kind: calcom.KindHTTPStatus, Status: 500, Body: "down"}
	w = do(t, r, http.MethodGet, "/api/meeting-types", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, KindTransport, decodeBody(t, w)["kind"])
}

func TestCancelHandlers(t *testing.T) {
	stub := &stubScheduler{cancelID: 12, cancelRaw: json.RawMessage(`{"message":"Booking with id 12 deleted"}`)}
	r := newTestRouter(t, stub)

	w := do(t, r, http.MethodDelete, "/api/bookings/12", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, stub.gotCancelID)
	assert.JSONEq(t, `{"message":"Booking with id 12 deleted"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/api/bookings/abc", "").Code)

	w = do(t, r, http.MethodDelete, "/api/bookings?email=a@b.com&date=2024-06-01&time=11:00", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a@b.com", "2024-06-01", "11:00", ""}, stub.cancelByTime)

	stub.err = scheduling.ErrBookingNotFound
	w = do(t, r, http.MethodDelete, "/api/bookings?email=a@b.com&date=2024-06-01&time=12:00", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, KindBookingNotFound, decodeBody(t, w)["kind"])
}

func TestToolCallHandler(t *testing.T) {
	stub := &stubScheduler{available: false}
	r := newTestRouter(t, stub)

	w := do(t, r, http.MethodPost, "/api/tool-calls",
		`{"id":"call_9","type":"function","function":{"name":"check_availability","arguments":"{\"date\":\"2024-06-01\",\"time\":\"10:00\"}"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "tool", body["role"])
	assert.Equal(t, "call_9", body["tool_call_id"])
	assert.Contains(t, body["content"], "is not available")

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/tool-calls", `{"id":"x"}`).Code)
}
