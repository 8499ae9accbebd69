package app

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"meeting-assistant/internal/scheduling"
)

// Scheduler is what the dispatcher needs from the scheduling layer.
type Scheduler interface {
	ListMeetingTypes(ctx context.Context) ([]scheduling.MeetingType, error)
	DaySlots(ctx context.Context, date, tz string, durationMinutes, meetingTypeID int) ([]scheduling.AvailabilitySlot, error)
	CheckAvailability(ctx context.Context, date, localTime string, durationMinutes int, tz string) (bool, error)
	Book(ctx context.Context, req scheduling.BookRequest) (*scheduling.Booking, error)
	ListBookings(ctx context.Context, email, tz string) ([]scheduling.Booking, error)
	CancelBooking(ctx context.Context, id int) (json.RawMessage, error)
	CancelByTime(ctx context.Context, email, date, localTime, tz string) (int, json.RawMessage, error)
}

var _ Scheduler = (*scheduling.Service)(nil)

type App struct {
	Scheduler Scheduler
	Logger    *zap.Logger
}

func New(s Scheduler, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{Scheduler: s, Logger: logger}
}

type bookReq struct {
	Email    string `json:"email" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Reason   string `json:"reason"`
	Timezone string `json:"timezone"`
}

type cancelReq struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Date     string `json:"date" form:"date" binding:"required"`
	Time     string `json:"time" form:"time" binding:"required"`
	Timezone string `json:"timezone" form:"timezone"`
}

type listReq struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Timezone string `json:"timezone" form:"timezone"`
}

type availabilityReq struct {
	Date     string `json:"date" form:"date" binding:"required"`
	Time     string `json:"time" form:"time" binding:"required"`
	Duration int    `json:"duration" form:"duration"`
	Timezone string `json:"timezone" form:"timezone"`
}

type slotsReq struct {
	Date          string `form:"date" binding:"required"`
	Timezone      string `form:"timezone"`
	Duration      int    `form:"duration"`
	MeetingTypeID int    `form:"event_type_id"`
}

// ToolResult is the content of a tool message handed back to the dispatcher.
type ToolResult struct {
	OK      bool       `json:"ok"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}
