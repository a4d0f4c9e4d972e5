package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/app/registry"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/source"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const SourceName = "kafka"

// fetchRetryDelay is the pause after a failed fetch before the next attempt.
var fetchRetryDelay = time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource reads notification-created events published as JSON records.
// Each record is committed once its handler returns, whatever the outcome.
type KafkaSource struct {
	reader   messageReader
	writer   messageWriter
	topic    string
	groupID  string
	dlqTopic string
	mu       sync.Mutex
}

func NewKafkaSource(conf configs.KafkaConf) (*KafkaSource, error) {
	if len(conf.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers cannot be empty")
	}
	if conf.Topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC must be set")
	}
	if conf.GroupID == "" {
		return nil, fmt.Errorf("KAFKA_GROUP_ID must be set")
	}
	if conf.DLQTopic == "" {
		logger.L().Warn("KAFKA_DLQ_TOPIC is not set. Undecodable messages will be discarded.")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(conf.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        conf.Brokers,
		Topic:          conf.Topic,
		GroupID:        conf.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,
	})

	logger.L().Info("Kafka source initialized",
		zap.String("topic", conf.Topic),
		zap.String("groupID", conf.GroupID),
		zap.String("dlqTopic", conf.DLQTopic),
		zap.Strings("brokers", conf.Brokers),
	)

	return newKafkaSource(r, w, conf), nil
}

func newKafkaSource(r messageReader, w messageWriter, conf configs.KafkaConf) *KafkaSource {
	return &KafkaSource{
		reader:   r,
		writer:   w,
		topic:    conf.Topic,
		groupID:  conf.GroupID,
		dlqTopic: conf.DLQTopic,
	}
}

func NewKafkaSourceFactory(cfg *configs.Config, _ registry.Resources) (source.EventSource, error) {
	return NewKafkaSource(cfg.Kafka())
}

func (ks *KafkaSource) Name() string {
	return SourceName
}

// Watch fetches records until ctx is cancelled and passes each decoded event to handle.
func (ks *KafkaSource) Watch(ctx context.Context, handle source.EventHandler) error {
	logger.L().Info("Starting Kafka consumer loop",
		zap.String("topic", ks.topic),
		zap.String("groupID", ks.groupID),
	)

	for {
		message, err := ks.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.L().Info("Context cancelled, stopping consumer loop",
					zap.String("topic", ks.topic),
					zap.Error(err),
				)
				return nil
			}
			logger.L().Error("Error fetching message from Kafka, continuing loop",
				zap.String("topic", ks.topic),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		logger.L().Debug("Fetched Kafka message",
			zap.String("topic", message.Topic),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
			zap.ByteString("key", message.Key),
		)

		processingCtx := propagation.TraceContext{}.Extract(ctx, otelHeaderCarrier{headers: &message.Headers})
		msg := &KafkaMessage{source: ks, kafkaMsg: message}

		event, err := decodeEvent(message)
		if err != nil {
			logger.L().Error("Error unmarshalling message, moving to DLQ",
				zap.String("topic", message.Topic),
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
			if dlqErr := msg.MoveToDLQ(processingCtx, err); dlqErr != nil {
				logger.L().Error("Failed to move undecodable message to DLQ. Message may be reprocessed.",
					zap.Int64("offset", message.Offset),
					zap.Error(dlqErr),
				)
			}
			continue
		}
		msg.event = event

		if err := handle(processingCtx, event); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Not handed off; the record stays uncommitted for redelivery.
				logger.L().Info("Event not handed off before shutdown, leaving offset uncommitted",
					zap.Int64("offset", message.Offset),
					zap.String("notificationID", event.NotificationID),
				)
				return nil
			}
			logger.L().Error("Error returned by event handler",
				zap.Int64("offset", message.Offset),
				zap.String("notificationID", event.NotificationID),
				zap.Error(err),
			)
		}
		_ = msg.Ack(processingCtx)

		if ctx.Err() != nil {
			logger.L().Info("Context cancelled during processing, stopping consumer loop",
				zap.String("topic", ks.topic),
			)
			return nil
		}
	}
}

// decodeEvent reads the JSON record, falling back to the message key for the id.
func decodeEvent(message kafka.Message) (domain.NotificationEvent, error) {
	var event domain.NotificationEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return domain.NotificationEvent{}, fmt.Errorf("unmarshalling error: %w", err)
	}
	if event.NotificationID == "" {
		event.NotificationID = string(message.Key)
	}
	if event.Type == "" {
		return domain.NotificationEvent{}, errors.New("record has no type")
	}
	return event, nil
}

func (ks *KafkaSource) Close() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	var errs []error
	if ks.reader != nil {
		if err := ks.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("reader: %w", err))
		}
	}
	if ks.writer != nil {
		if err := ks.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("writer: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.L().Error("Errors occurred during Kafka resource closing", zap.Error(err))
		return err
	}
	logger.L().Info("Kafka resources closed successfully.")
	return nil
}

func init() {
	if err := registry.RegisterSourceFactory(SourceName, NewKafkaSourceFactory); err != nil {
		panic(fmt.Sprintf("Failed to register source factory '%s': %v", SourceName, err))
	}
}
