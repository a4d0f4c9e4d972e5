package sendpush

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/app/message"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Deliverer sends one assembled message and returns its delivery id.
type Deliverer interface {
	Deliver(ctx context.Context, path string, msg domain.PushMessage) (string, error)
}

type SendPushUseCase interface {
	Execute(ctx context.Context, input SendPushInputDTO) (SendPushOutputDTO, error)
}

type sendPushUseCase struct {
	builder   *message.Builder
	deliverer Deliverer
}

func NewSendPushUseCase(builder *message.Builder, deliverer Deliverer) SendPushUseCase {
	return &sendPushUseCase{
		builder:   builder,
		deliverer: deliverer,
	}
}

func (s *sendPushUseCase) Execute(ctx context.Context, input SendPushInputDTO) (SendPushOutputDTO, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "SendPushUseCase.Execute")
	defer span.End()

	req, err := ValidateRequest(input)
	if err != nil {
		logger.L().Warn("Rejected send request",
			zap.String("traceID", logger.TraceIDFromContext(ctx)),
			zap.Error(err),
		)
		return SendPushOutputDTO{}, err
	}
	span.SetAttributes(attribute.String("push.type", req.Type))

	msg := s.builder.FromRequest(req.Token, req.Title, req.Body, req.Data)
	logger.L().Info("Sending push notification",
		zap.String("type", req.Type),
		zap.String("title", msg.Title),
		zap.Any("data", msg.Data),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	)

	id, err := s.deliverer.Deliver(ctx, metrics.PathHTTP, msg)
	if err != nil {
		return SendPushOutputDTO{}, err
	}

	return SendPushOutputDTO{Success: true, MessageID: id}, nil
}
