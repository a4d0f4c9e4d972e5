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

type commentDocument struct {
	Content string `bson:"content"`
}

// CommentStore reads comments, scoped to the item they were posted on.
type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(coll *mongo.Collection) *CommentStore {
	return &CommentStore{coll: coll}
}

func (s *CommentStore) GetComment(ctx context.Context, relatedItemID, commentID string) (domain.Comment, error) {
	filter := bson.D{
		{Key: "_id", Value: commentID},
		{Key: "relatedItemId", Value: relatedItemID},
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "content", Value: 1}})

	var doc commentDocument
	err := s.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Comment{}, fmt.Errorf("comment %s on %s not found: %w", commentID, relatedItemID, domain.ErrContentLookup)
	}
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to read comment %s: %w", commentID, errors.Join(domain.ErrContentLookup, err))
	}

	return domain.Comment{
		ID:            commentID,
		RelatedItemID: relatedItemID,
		Content:       doc.Content,
	}, nil
}
