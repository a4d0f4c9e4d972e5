package consumer

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/source"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/internal/observability/tracing"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkerPoolSize = 16

// EventDispatcher runs the store-triggered pipeline for one event.
type EventDispatcher interface {
	Handle(ctx context.Context, event domain.NotificationEvent) error
}

// ConsumerUseCase fans events from every enabled source out to a bounded pool
// of goroutines. Events are independent and may complete in any order.
type ConsumerUseCase struct {
	sources    []source.EventSource
	dispatcher EventDispatcher
	semaphore  chan struct{}
	inFlight   sync.WaitGroup
}

func NewConsumerUseCase(sources []source.EventSource, dispatcher EventDispatcher, semaphore chan struct{}) *ConsumerUseCase {
	if len(sources) == 0 {
		logger.L().Warn("No trigger sources enabled. Only the HTTP path will send notifications.")
	}
	return &ConsumerUseCase{
		sources:    sources,
		dispatcher: dispatcher,
		semaphore:  semaphore,
	}
}

// Execute blocks until ctx is cancelled or a source fails, then waits for
// in-flight dispatches to finish.
func (u *ConsumerUseCase) Execute(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range u.sources {
		src := src
		g.Go(func() error {
			logger.L().Info("Starting trigger source", zap.String("source", src.Name()))
			if err := src.Watch(gctx, u.handlerFor(src.Name())); err != nil {
				return fmt.Errorf("source %s stopped: %w", src.Name(), err)
			}
			return nil
		})
	}

	err := g.Wait()
	u.inFlight.Wait()
	logger.L().Info("All trigger sources stopped")
	return err
}

func (u *ConsumerUseCase) handlerFor(sourceName string) source.EventHandler {
	return func(ctx context.Context, event domain.NotificationEvent) error {
		select {
		case u.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		metrics.EventsReceived.WithLabelValues(sourceName, string(event.Type)).Inc()

		// In-flight dispatches outlive shutdown so an accepted event is not cut off mid-send.
		processingCtx, span := tracing.GetTracer().Start(
			context.WithoutCancel(ctx),
			"Consumer.processEvent",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("source", sourceName),
				attribute.String("notification.id", event.NotificationID),
			),
		)

		u.inFlight.Add(1)
		go func() {
			defer u.inFlight.Done()
			defer span.End()
			defer func() {
				<-u.semaphore
			}()
			u.processEvent(processingCtx, sourceName, event)
		}()
		return nil
	}
}

func (u *ConsumerUseCase) processEvent(ctx context.Context, sourceName string, event domain.NotificationEvent) {
	traceID := logger.TraceIDFromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("CRITICAL: Panic recovered in processEvent",
				zap.Any("panicValue", r),
				zap.String("stacktrace", string(debug.Stack())),
				zap.String("source", sourceName),
				zap.String("notificationID", event.NotificationID),
				zap.String("traceID", traceID),
			)
			metrics.ErrorTotal.WithLabelValues("panic").Inc()
		}
	}()

	if err := u.dispatcher.Handle(ctx, event); err != nil {
		logger.L().Error("Error dispatching notification",
			zap.String("source", sourceName),
			zap.String("notificationID", event.NotificationID),
			zap.String("type", string(event.Type)),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
	}
}
