package app

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func (a *App) replyError(c *gin.Context, err error) {
	body := Describe(err)
	if body.Status >= http.StatusInternalServerError {
		a.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.String("kind", body.Kind), zap.Error(err))
	}
	c.JSON(body.Status, gin.H{"error": body.Message, "kind": body.Kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": KindInvalidArgument})
}

// GET /healthz
func (a *App) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/tools
func (a *App) ToolsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, Tools())
}

// POST /api/tool-calls
// Body is a single model tool call; the reply is the tool message.
func (a *App) ToolCallHandler(c *gin.Context) {
	var call openai.ToolCall
	if err := c.ShouldBindJSON(&call); err != nil {
		badRequest(c, err)
		return
	}
	if call.Function.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "function name required", "kind": KindInvalidArgument})
		return
	}
	c.JSON(http.StatusOK, a.Dispatch(c.Request.Context(), call))
}

// GET /api/meeting-types
func (a *App) ListMeetingTypesHandler(c *gin.Context) {
	types, err := a.Scheduler.ListMeetingTypes(c.Request.Context())
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// GET /api/slots?date=YYYY-MM-DD&timezone=&event_type_id=&duration=
func (a *App) GetSlotsHandler(c *gin.Context) {
	var q slotsReq
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	slots, err := a.Scheduler.DaySlots(c.Request.Context(), q.Date, q.Timezone, q.Duration, q.MeetingTypeID)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GET /api/availability?date=&time=&duration=&timezone=
func (a *App) CheckAvailabilityHandler(c *gin.Context) {
	var q availabilityReq
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	msg, data, err := a.checkAvailability(c.Request.Context(), q)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "data": data})
}

// POST /api/bookings
func (a *App) CreateBookingHandler(c *gin.Context) {
	var req bookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	_, booking, err := a.bookMeeting(c.Request.Context(), req)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings?email=&timezone=
func (a *App) ListBookingsHandler(c *gin.Context) {
	var q listReq
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	_, bookings, err := a.listMeetings(c.Request.Context(), q)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// DELETE /api/bookings?email=&date=&time=&timezone=
func (a *App) CancelByTimeHandler(c *gin.Context) {
	var q cancelReq
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	msg, data, err := a.cancelMeeting(c.Request.Context(), q)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "data": data})
}

// DELETE /api/bookings/:id
func (a *App) CancelBookingHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id", "kind": KindInvalidArgument})
		return
	}
	raw, err := a.Scheduler.CancelBooking(c.Request.Context(), id)
	if err != nil {
		a.replyError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
