package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/push"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Client performs exactly one send per call. It never retries.
type Client struct {
	sender push.Sender
}

func NewClient(sender push.Sender) *Client {
	return &Client{sender: sender}
}

// Deliver sends msg and returns the provider's delivery id. Every failure is
// returned as a *domain.DeliveryError. path labels the entry point in metrics.
func (c *Client) Deliver(ctx context.Context, path string, msg domain.PushMessage) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "PushDelivery.Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("push.path", path),
		attribute.String("push.type", msg.Data["type"]),
	)

	traceID := logger.TraceIDFromContext(ctx)
	start := time.Now()

	id, err := c.sender.Send(ctx, msg)
	if err != nil {
		var delivery *domain.DeliveryError
		if !errors.As(err, &delivery) {
			delivery = domain.NewDeliveryError(domain.UnknownErrorCode, err)
		}
		metrics.ObserveDelivery(path, false, start)
		metrics.ErrorTotal.WithLabelValues("delivery").Inc()
		span.RecordError(delivery)
		span.SetStatus(codes.Error, delivery.Code)
		logger.L().Error("Push delivery failed",
			zap.String("path", path),
			zap.String("type", msg.Data["type"]),
			zap.String("code", delivery.Code),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
		return "", delivery
	}

	metrics.ObserveDelivery(path, true, start)
	span.SetAttributes(attribute.String("push.message_id", id))
	logger.L().Info("Push delivered",
		zap.String("path", path),
		zap.String("type", msg.Data["type"]),
		zap.String("messageID", id),
		zap.String("traceID", traceID),
	)
	return id, nil
}
