package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/app/registry"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/source"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const SourceName = "mongo"

// reopenDelay is the pause before a failed or closed change stream is reopened.
var reopenDelay = time.Second

type changeEvent struct {
	ResumeToken  bson.Raw                 `bson:"_id"`
	DocumentKey  documentKey              `bson:"documentKey"`
	FullDocument domain.NotificationEvent `bson:"fullDocument"`
}

type documentKey struct {
	ID bson.RawValue `bson:"_id"`
}

// ChangeStreamSource emits one event per document inserted into the
// notifications collection.
type ChangeStreamSource struct {
	coll        *mongo.Collection
	resumeToken bson.Raw
}

func NewChangeStreamSource(coll *mongo.Collection) *ChangeStreamSource {
	return &ChangeStreamSource{coll: coll}
}

func NewChangeStreamSourceFactory(cfg *configs.Config, res registry.Resources) (source.EventSource, error) {
	if res.Mongo == nil {
		return nil, errors.New("mongo source requires a MongoDB connection")
	}
	return NewChangeStreamSource(res.Mongo.Collection(cfg.MongoNotificationsCollection)), nil
}

func (s *ChangeStreamSource) Name() string {
	return SourceName
}

// Watch follows inserts until ctx is cancelled. The stream is reopened from the
// last seen resume token after any stream error.
func (s *ChangeStreamSource) Watch(ctx context.Context, handle source.EventHandler) error {
	logger.L().Info("Starting MongoDB change stream",
		zap.String("collection", s.coll.Name()),
	)

	for {
		err := s.watchOnce(ctx, handle)
		if ctx.Err() != nil {
			logger.L().Info("Context cancelled, stopping change stream",
				zap.String("collection", s.coll.Name()),
			)
			return nil
		}
		logger.L().Error("Change stream interrupted, reopening",
			zap.String("collection", s.coll.Name()),
			zap.Bool("resuming", s.resumeToken != nil),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reopenDelay):
		}
	}
}

func (s *ChangeStreamSource) watchOnce(ctx context.Context, handle source.EventHandler) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	opts := options.ChangeStream()
	if s.resumeToken != nil {
		opts.SetResumeAfter(s.resumeToken)
	}

	stream, err := s.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var change changeEvent
		if err := stream.Decode(&change); err != nil {
			logger.L().Error("Failed to decode change event, skipping",
				zap.Error(err),
			)
			s.resumeToken = stream.ResumeToken()
			continue
		}

		event := eventFromChange(change)
		if err := handle(ctx, event); err != nil {
			logger.L().Error("Error returned by event handler",
				zap.String("notificationID", event.NotificationID),
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
		}
		s.resumeToken = stream.ResumeToken()
	}

	if err := stream.Err(); err != nil {
		return err
	}
	return errors.New("change stream closed")
}

func (s *ChangeStreamSource) Close() error {
	return nil
}

// eventFromChange attaches the store-generated id to the inserted record.
func eventFromChange(change changeEvent) domain.NotificationEvent {
	event := change.FullDocument
	event.NotificationID = documentID(change.DocumentKey.ID)
	return event
}

func documentID(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case 0:
		return ""
	default:
		return v.String()
	}
}

func init() {
	if err := registry.RegisterSourceFactory(SourceName, NewChangeStreamSourceFactory); err != nil {
		panic(fmt.Sprintf("Failed to register source factory '%s': %v", SourceName, err))
	}
}
