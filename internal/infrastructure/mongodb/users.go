package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	FCMToken    string `bson:"fcmToken,omitempty"`
	DisplayName string `bson:"displayName,omitempty"`
}

// UserDirectory reads recipients from the users collection, keyed by user id.
type UserDirectory struct {
	coll *mongo.Collection
}

func NewUserDirectory(coll *mongo.Collection) *UserDirectory {
	return &UserDirectory{coll: coll}
}

// GetRecipient returns the user's stored token as-is; an empty token is the
// caller's concern.
func (d *UserDirectory) GetRecipient(ctx context.Context, userID string) (domain.Recipient, error) {
	opts := options.FindOne().SetProjection(bson.D{
		{Key: "fcmToken", Value: 1},
		{Key: "displayName", Value: 1},
	})

	var doc userDocument
	err := d.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Recipient{}, fmt.Errorf("user %s: %w", userID, domain.ErrRecipientNotFound)
	}
	if err != nil {
		return domain.Recipient{}, fmt.Errorf("failed to read user %s: %w", userID, err)
	}

	return domain.Recipient{
		UserID:        userID,
		DeliveryToken: doc.FCMToken,
		DisplayName:   doc.DisplayName,
	}, nil
}
