// Package scheduling books, lists, and cancels meetings against the
// scheduling service, converting between the caller's zone and UTC.
//
// Availability and creation are two separate round trips with nothing held in
// between, so a slot can be taken by someone else after the check passes. The
// service is the only arbiter of conflicting writes.
package scheduling

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"meeting-assistant/internal/calcom"
)

// Transport is the subset of *calcom.Client the service needs.
type Transport interface {
	Request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error)
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
	Username() string
}

var _ Transport = (*calcom.Client)(nil)

// Service is stateless apart from its collaborators and safe for concurrent use.
type Service struct {
	api    Transport
	logger *zap.Logger
}

func NewService(api Transport, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger.Named("scheduling")}
}
