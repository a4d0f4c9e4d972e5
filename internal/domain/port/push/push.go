package push

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
)

// Sender hands one message to the push-delivery service and returns its delivery id.
// Failures should be reported as *domain.DeliveryError so the provider code survives.
type Sender interface {
	Send(ctx context.Context, message domain.PushMessage) (string, error)
}
