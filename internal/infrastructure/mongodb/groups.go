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

type groupDocument struct {
	Name string `bson:"name"`
}

type GroupDirectory struct {
	coll *mongo.Collection
}

func NewGroupDirectory(coll *mongo.Collection) *GroupDirectory {
	return &GroupDirectory{coll: coll}
}

func (d *GroupDirectory) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "name", Value: 1}})

	var doc groupDocument
	err := d.coll.FindOne(ctx, bson.D{{Key: "_id", Value: groupID}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Group{}, fmt.Errorf("group %s: %w", groupID, domain.ErrGroupNotFound)
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("failed to read group %s: %w", groupID, err)
	}

	return domain.Group{ID: groupID, Name: doc.Name}, nil
}
