package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDB holds the connected client and the application database.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	conf     configs.MongoConf
}

func NewMongoDB(conf configs.MongoConf) (*MongoDB, error) {
	if conf.URI == "" {
		return nil, fmt.Errorf("MONGO_URI must be set")
	}
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.L().Info("Connected to MongoDB", zap.String("database", conf.Database))

	return &MongoDB{
		Client:   client,
		Database: client.Database(conf.Database),
		conf:     conf,
	}, nil
}

func (m *MongoDB) Users() *UserDirectory {
	return NewUserDirectory(m.Database.Collection(m.conf.UsersCollection))
}

func (m *MongoDB) Groups() *GroupDirectory {
	return NewGroupDirectory(m.Database.Collection(m.conf.GroupsCollection))
}

func (m *MongoDB) Comments() *CommentStore {
	return NewCommentStore(m.Database.Collection(m.conf.CommentsCollection))
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	logger.L().Info("Disconnected from MongoDB")
	return nil
}
