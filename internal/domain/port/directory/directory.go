package directory

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
)

// UserDirectory looks up users by id. A missing user is reported as domain.ErrRecipientNotFound.
type UserDirectory interface {
	GetRecipient(ctx context.Context, userID string) (domain.Recipient, error)
}

// GroupDirectory looks up groups by id. A missing group is reported as domain.ErrGroupNotFound.
type GroupDirectory interface {
	GetGroup(ctx context.Context, groupID string) (domain.Group, error)
}

// CommentStore looks up a comment under its parent item.
type CommentStore interface {
	GetComment(ctx context.Context, relatedItemID, commentID string) (domain.Comment, error)
}
