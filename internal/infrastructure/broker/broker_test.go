package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/app/registry"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until ctx is cancelled.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	commitErr error
	fetchErr  error
	fetches   int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	if r.fetchErr != nil {
		r.fetches++
		r.mu.Unlock()
		return kafka.Message{}, r.fetchErr
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return r.commitErr
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	written  []kafka.Message
	writeErr error
	closeErr error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return w.closeErr }

func record(t *testing.T, key string, event map[string]any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "notifications", Key: []byte(key), Value: value}
}

// runWatch drives Watch until every queued message has been handled.
func runWatch(t *testing.T, ks *KafkaSource, want int, handle func(domain.NotificationEvent) error) []domain.NotificationEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []domain.NotificationEvent
	done := make(chan error, 1)
	reader := ks.reader.(*fakeReader)
	go func() {
		done <- ks.Watch(ctx, func(ctx context.Context, ev domain.NotificationEvent) error {
			got = append(got, ev)
			return handle(ev)
		})
	}()

	require.Eventually(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.queue) == 0 && len(reader.committed) >= want
	}, timeout, tick)
	cancel()
	require.NoError(t, <-done)
	return got
}

func TestKafkaSource_Watch(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		record(t, "n-1", map[string]any{"type": "friend", "sendUserId": "u-1", "receiveUserId": "u-2"}),
		record(t, "n-2", map[string]any{"notificationId": "n-explicit", "type": "comment", "sendUserId": "u-3", "receiveUserId": "u-2", "relatedItemId": "s-1", "interactionId": "c-1"}),
	}}
	ks := newKafkaSource(reader, &fakeWriter{}, configs.KafkaConf{Topic: "notifications", GroupID: "g"})

	got := runWatch(t, ks, 2, func(ev domain.NotificationEvent) error {
		if ev.Type == domain.RecordComment {
			return errors.New("delivery failed")
		}
		return nil
	})

	require.Len(t, got, 2)
	assert.Equal(t, "n-1", got[0].NotificationID)
	assert.Equal(t, domain.RecordFriend, got[0].Type)
	assert.Equal(t, "u-2", got[0].ReceiveUserID)
	assert.Equal(t, "n-explicit", got[1].NotificationID)
	assert.Equal(t, "c-1", got[1].InteractionID)
	// Handler failures are still committed.
	assert.Len(t, reader.committed, 2)
}

func TestKafkaSource_HandOffCancelled(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		record(t, "n-1", map[string]any{"type": "friend", "sendUserId": "u-1", "receiveUserId": "u-2"}),
		record(t, "n-2", map[string]any{"type": "friend", "sendUserId": "u-1", "receiveUserId": "u-3"}),
	}}
	ks := newKafkaSource(reader, &fakeWriter{}, configs.KafkaConf{Topic: "notifications", GroupID: "g"})

	var handled int
	err := ks.Watch(context.Background(), func(ctx context.Context, ev domain.NotificationEvent) error {
		handled++
		return fmt.Errorf("worker pool full: %w", context.Canceled)
	})

	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	assert.Empty(t, reader.committed, "record that was never handed off must stay uncommitted")
}

func TestKafkaSource_FetchErrorRetryStopsOnCancel(t *testing.T) {
	original := fetchRetryDelay
	fetchRetryDelay = time.Hour
	t.Cleanup(func() { fetchRetryDelay = original })

	reader := &fakeReader{fetchErr: errors.New("leader not available")}
	ks := newKafkaSource(reader, &fakeWriter{}, configs.KafkaConf{Topic: "notifications", GroupID: "g"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- ks.Watch(ctx, func(context.Context, domain.NotificationEvent) error { return nil })
	}()

	require.Eventually(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return reader.fetches == 1
	}, timeout, tick)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(timeout):
		t.Fatal("Watch kept waiting for the retry delay after cancellation")
	}
}

func TestKafkaSource_UndecodableMessage(t *testing.T) {
	tests := []struct {
		name        string
		dlqTopic    string
		wantWritten int
	}{
		{name: "moved to DLQ", dlqTopic: "notifications-dlq", wantWritten: 1},
		{name: "discarded without DLQ", dlqTopic: "", wantWritten: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{queue: []kafka.Message{
				{Topic: "notifications", Key: []byte("n-bad"), Value: []byte("{not json")},
			}}
			writer := &fakeWriter{}
			ks := newKafkaSource(reader, writer, configs.KafkaConf{Topic: "notifications", DLQTopic: tt.dlqTopic})

			got := runWatch(t, ks, 1, func(domain.NotificationEvent) error { return nil })

			assert.Empty(t, got)
			require.Len(t, writer.written, tt.wantWritten)
			if tt.wantWritten > 0 {
				msg := writer.written[0]
				assert.Equal(t, tt.dlqTopic, msg.Topic)
				assert.Equal(t, []byte("n-bad"), msg.Key)
				carrier := otelHeaderCarrier{headers: &msg.Headers}
				assert.Contains(t, carrier.Get(dlqReasonHeader), "unmarshalling error")
				assert.Equal(t, "notifications", carrier.Get(dlqSourceHeader))
			}
		})
	}
}

func TestKafkaMessage_MoveToDLQ_WriteFailure(t *testing.T) {
	reader := &fakeReader{}
	ks := newKafkaSource(reader, &fakeWriter{writeErr: errors.New("broker down")}, configs.KafkaConf{DLQTopic: "dlq"})
	msg := &KafkaMessage{source: ks, kafkaMsg: kafka.Message{Topic: "notifications", Offset: 7}}

	err := msg.MoveToDLQ(context.Background(), errors.New("record has no type"))

	require.Error(t, err)
	assert.Empty(t, reader.committed, "record must stay uncommitted so it is redelivered")
}

func TestDecodeEvent(t *testing.T) {
	_, err := decodeEvent(kafka.Message{Value: []byte(`{"sendUserId":"u-1"}`)})
	assert.Error(t, err)

	ev, err := decodeEvent(kafka.Message{Key: []byte("k-1"), Value: []byte(`{"type":"reaction","relatedItemId":"s-1"}`)})
	require.NoError(t, err)
	assert.Equal(t, "k-1", ev.NotificationID)
	assert.Equal(t, domain.RecordReaction, ev.Type)
}

func TestNewKafkaSource_Validation(t *testing.T) {
	tests := []struct {
		name string
		conf configs.KafkaConf
		want string
	}{
		{name: "no brokers", conf: configs.KafkaConf{Topic: "t", GroupID: "g"}, want: "brokers"},
		{name: "no topic", conf: configs.KafkaConf{Brokers: []string{"localhost:9092"}, GroupID: "g"}, want: "KAFKA_TOPIC"},
		{name: "no group", conf: configs.KafkaConf{Brokers: []string{"localhost:9092"}, Topic: "t"}, want: "KAFKA_GROUP_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKafkaSource(tt.conf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKafkaSource_Registered(t *testing.T) {
	factory, err := registry.GetSourceFactory(SourceName)
	require.NoError(t, err)

	_, err = factory(&configs.Config{}, registry.Resources{})
	assert.Error(t, err)
}

func TestKafkaSource_Close(t *testing.T) {
	ks := newKafkaSource(&fakeReader{}, &fakeWriter{closeErr: errors.New("flush failed")}, configs.KafkaConf{})
	err := ks.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writer")
}
