package eventwatcher

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/app/message"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeFiltered  Outcome = "filtered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDelivered Outcome = "delivered"
)

// Result describes how a dispatch ended when it ended without an error.
type Result struct {
	Outcome   Outcome
	MessageID string
	// Reason is set for skipped dispatches.
	Reason string
}

type Deliverer interface {
	Deliver(ctx context.Context, path string, msg domain.PushMessage) (string, error)
}

// Watcher runs the store-triggered pipeline for one created notification record.
type Watcher struct {
	resolver  *RecipientResolver
	enricher  *ContentEnricher
	builder   *message.Builder
	deliverer Deliverer
	accepted  map[domain.RecordType]struct{}
}

// NewWatcher accepts only the listed record types. An empty list accepts every
// type that maps onto a notification type.
func NewWatcher(resolver *RecipientResolver, enricher *ContentEnricher, builder *message.Builder, deliverer Deliverer, watched []string) *Watcher {
	accepted := make(map[domain.RecordType]struct{}, len(watched))
	for _, t := range watched {
		accepted[domain.RecordType(t)] = struct{}{}
	}
	return &Watcher{
		resolver:  resolver,
		enricher:  enricher,
		builder:   builder,
		deliverer: deliverer,
		accepted:  accepted,
	}
}

func (w *Watcher) accepts(record domain.RecordType) (domain.NotificationType, bool) {
	typ, ok := record.NotificationType()
	if !ok {
		return "", false
	}
	if len(w.accepted) == 0 {
		return typ, true
	}
	_, ok = w.accepted[record]
	return typ, ok
}

// Dispatch filters, resolves, enriches, builds and delivers. Filtered events and
// soft-skips return a nil error; lookup and delivery failures are returned.
func (w *Watcher) Dispatch(ctx context.Context, ev domain.NotificationEvent) (Result, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "EventWatcher.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.id", ev.NotificationID),
		attribute.String("notification.record_type", string(ev.Type)),
	)

	traceID := logger.TraceIDFromContext(ctx)
	log := logger.L().With(
		zap.String("notificationID", ev.NotificationID),
		zap.String("type", string(ev.Type)),
		zap.String("traceID", traceID),
	)

	typ, ok := w.accepts(ev.Type)
	if !ok {
		metrics.EventsFiltered.WithLabelValues(string(ev.Type)).Inc()
		log.Debug("Record type not watched, ignoring")
		return Result{Outcome: OutcomeFiltered}, nil
	}

	recipient, err := w.resolver.Resolve(ctx, ev.ReceiveUserID)
	if err != nil {
		return w.endWithError(span, log, typ, err)
	}

	content, err := w.enricher.Enrich(ctx, typ, ev)
	if err != nil {
		return w.endWithError(span, log, typ, err)
	}

	msg := w.builder.Build(recipient.DeliveryToken, message.Envelope{
		NotificationID: ev.NotificationID,
		FromUserID:     ev.SendUserID,
		ToUserID:       ev.ReceiveUserID,
		SenderName:     ev.SendUserDisplayName,
		Content:        content,
	})

	id, err := w.deliverer.Deliver(ctx, metrics.PathStore, msg)
	if err != nil {
		return w.endWithError(span, log, typ, err)
	}

	log.Info("Store-triggered push delivered", zap.String("messageID", id))
	return Result{Outcome: OutcomeDelivered, MessageID: id}, nil
}

func (w *Watcher) endWithError(span trace.Span, log *zap.Logger, typ domain.NotificationType, err error) (Result, error) {
	if domain.IsSoftSkip(err) {
		reason := domain.SkipReason(err)
		metrics.DispatchSkipped.WithLabelValues(string(typ), reason).Inc()
		log.Info("Dispatch skipped", zap.String("reason", reason), zap.Error(err))
		return Result{Outcome: OutcomeSkipped, Reason: reason}, nil
	}
	metrics.ErrorTotal.WithLabelValues("dispatch").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return Result{}, err
}

// Handle adapts Dispatch to the trigger source callback.
func (w *Watcher) Handle(ctx context.Context, ev domain.NotificationEvent) error {
	_, err := w.Dispatch(ctx, ev)
	return err
}
