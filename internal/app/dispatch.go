package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"meeting-assistant/internal/scheduling"
)

// Dispatch executes one model tool call and returns the tool message to append
// to the conversation. Failures are reported inside the message content.
func (a *App) Dispatch(ctx context.Context, call openai.ToolCall) openai.ChatCompletionMessage {
	name := call.Function.Name
	res := a.run(ctx, name, call.Function.Arguments)

	content, err := json.Marshal(res)
	if err != nil {
		a.Logger.Error("encoding tool result", zap.String("tool", name), zap.Error(err))
		content = []byte(`{"ok":false,"error":{"kind":"internal","error":"could not encode result"}}`)
	}
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    string(content),
		Name:       name,
		ToolCallID: call.ID,
	}
}

func (a *App) run(ctx context.Context, name, args string) (res ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("tool call panicked", zap.String("tool", name), zap.Any("panic", r))
			res = failure(fmt.Errorf("tool %s failed: %v", name, r))
		}
	}()

	log := a.Logger.With(zap.String("tool", name))
	log.Info("executing tool call")

	var (
		msg  string
		data any
		err  error
	)
	switch name {
	case ToolBookMeeting:
		var req bookReq
		if err = decodeArgs(args, &req); err == nil {
			msg, data, err = a.bookMeeting(ctx, req)
		}
	case ToolCancelMeeting:
		var req cancelReq
		if err = decodeArgs(args, &req); err == nil {
			msg, data, err = a.cancelMeeting(ctx, req)
		}
	case ToolListMeetings:
		var req listReq
		if err = decodeArgs(args, &req); err == nil {
			msg, data, err = a.listMeetings(ctx, req)
		}
	case ToolCheckAvailability:
		var req availabilityReq
		if err = decodeArgs(args, &req); err == nil {
			msg, data, err = a.checkAvailability(ctx, req)
		}
	default:
		err = fmt.Errorf("%w: unknown tool %q", errInvalidArgument, name)
	}
	if err != nil {
		log.Warn("tool call failed", zap.Error(err))
		return failure(err)
	}
	return ToolResult{OK: true, Message: msg, Data: data}
}

func failure(err error) ToolResult {
	body := Describe(err)
	return ToolResult{OK: false, Error: &body}
}

func decodeArgs(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("%w: malformed arguments: %v", errInvalidArgument, err)
	}
	return nil
}

// requireFields reports the first empty value, given name/value pairs.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", errInvalidArgument, pairs[i])
		}
	}
	return nil
}

func (a *App) bookMeeting(ctx context.Context, req bookReq) (string, any, error) {
	if err := requireFields("email", req.Email, "date", req.Date, "time", req.Time); err != nil {
		return "", nil, err
	}
	b, err := a.Scheduler.Book(ctx, scheduling.BookRequest{
		Email:    req.Email,
		Date:     req.Date,
		Time:     req.Time,
		Reason:   req.Reason,
		Timezone: req.Timezone,
	})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Meeting booked for %s (%s)", b.DisplayTime, zoneName(req.Timezone)), b, nil
}

func (a *App) cancelMeeting(ctx context.Context, req cancelReq) (string, any, error) {
	if err := requireFields("email", req.Email, "date", req.Date, "time", req.Time); err != nil {
		return "", nil, err
	}
	id, raw, err := a.Scheduler.CancelByTime(ctx, req.Email, req.Date, req.Time, req.Timezone)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Meeting on %s at %s cancelled", req.Date, req.Time),
		gin.H{"booking_id": id, "result": raw}, nil
}

func (a *App) listMeetings(ctx context.Context, req listReq) (string, any, error) {
	if err := requireFields("email", req.Email); err != nil {
		return "", nil, err
	}
	bookings, err := a.Scheduler.ListBookings(ctx, req.Email, req.Timezone)
	if err != nil {
		return "", nil, err
	}
	if len(bookings) == 0 {
		return "No meetings found", bookings, nil
	}
	return fmt.Sprintf("Found %d meeting(s)", len(bookings)), bookings, nil
}

func (a *App) checkAvailability(ctx context.Context, req availabilityReq) (string, any, error) {
	if err := requireFields("date", req.Date, "time", req.Time); err != nil {
		return "", nil, err
	}
	if req.Duration < 0 {
		return "", nil, fmt.Errorf("%w: duration must not be negative", errInvalidArgument)
	}
	ok, err := a.Scheduler.CheckAvailability(ctx, req.Date, req.Time, req.Duration, req.Timezone)
	if err != nil {
		return "", nil, err
	}
	msg := fmt.Sprintf("%s at %s is not available", req.Date, req.Time)
	if ok {
		msg = fmt.Sprintf("%s at %s is available", req.Date, req.Time)
	}
	return msg, gin.H{"available": ok}, nil
}

func zoneName(tz string) string {
	if tz == "" {
		return "UTC"
	}
	return tz
}
