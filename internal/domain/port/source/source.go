package source

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
)

// EventHandler processes one created notification record.
type EventHandler func(ctx context.Context, event domain.NotificationEvent) error

// EventSource delivers notification-created events from a backing store or bus.
type EventSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Watch blocks, invoking handle for each created record, until ctx is cancelled.
	// Errors returned by handle are logged by the source and never stop the loop.
	Watch(ctx context.Context, handle EventHandler) error
	// Close releases the resources held by the source.
	Close() error
}
