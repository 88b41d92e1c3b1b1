package ports

import (
	"context"

	"github.com/bnema/watchlist-cli/internal/domain"
)

// EventRecorder appends to the action log. Implementations never fail the
// caller.
type EventRecorder interface {
	Append(ctx context.Context, eventType domain.EventType, payload map[string]any) domain.EventLogEntry
}
