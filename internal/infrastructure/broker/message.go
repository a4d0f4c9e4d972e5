package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/observability/metrics"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// KafkaMessage pairs a fetched record with its decoded event.
type KafkaMessage struct {
	source   *KafkaSource
	kafkaMsg kafka.Message
	event    domain.NotificationEvent
}

func (m *KafkaMessage) Event() domain.NotificationEvent {
	return m.event
}

// Ack commits the offset for the current message.
func (m *KafkaMessage) Ack(ctx context.Context) error {
	traceID := logger.TraceIDFromContext(ctx)
	err := m.source.reader.CommitMessages(ctx, m.kafkaMsg)
	if err != nil {
		logger.L().Error("Failed to commit Kafka message offset",
			zap.Int64("offset", m.kafkaMsg.Offset),
			zap.String("topic", m.kafkaMsg.Topic),
			zap.String("notificationID", m.event.NotificationID),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
	}
	return err
}

// MoveToDLQ publishes the raw record to the DLQ topic and commits it.
// Without a DLQ topic the record is committed and dropped.
func (m *KafkaMessage) MoveToDLQ(ctx context.Context, reason error) error {
	traceID := logger.TraceIDFromContext(ctx)

	if m.source.dlqTopic == "" {
		logger.L().Warn("DLQ topic not configured. Discarding message.",
			zap.Int64("offset", m.kafkaMsg.Offset),
			zap.String("traceID", traceID),
			zap.Error(reason),
		)
		metrics.ErrorTotal.WithLabelValues("kafka_discarded").Inc()
		return m.Ack(ctx)
	}

	headers := setHeader(m.kafkaMsg.Headers, dlqReasonHeader, reason.Error())
	headers = setHeader(headers, dlqSourceHeader, m.kafkaMsg.Topic)
	propagation.TraceContext{}.Inject(ctx, otelHeaderCarrier{headers: &headers})

	dlqMsg := kafka.Message{
		Topic:   m.source.dlqTopic,
		Key:     m.kafkaMsg.Key,
		Value:   m.kafkaMsg.Value,
		Headers: headers,
		Time:    time.Now(),
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := m.source.writer.WriteMessages(ctxTimeout, dlqMsg); err != nil {
		logger.L().Error("Failed to publish message to DLQ",
			zap.String("dlqTopic", m.source.dlqTopic),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish message to DLQ: %w", err)
	}
	metrics.ErrorTotal.WithLabelValues("kafka_dlq").Inc()

	if err := m.Ack(ctx); err != nil {
		return fmt.Errorf("failed to ack original message after DLQ: %w", err)
	}

	logger.L().Info("Message published to DLQ and original message acknowledged",
		zap.String("dlqTopic", m.source.dlqTopic),
		zap.String("traceID", traceID),
	)
	return nil
}
