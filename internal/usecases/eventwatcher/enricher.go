package eventwatcher

import (
	"context"
	"fmt"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/directory"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.uber.org/zap"
)

// ContentEnricher turns an event into the content variant for its type,
// fetching the group name or comment text where needed.
type ContentEnricher struct {
	groups   directory.GroupDirectory
	comments directory.CommentStore
}

func NewContentEnricher(groups directory.GroupDirectory, comments directory.CommentStore) *ContentEnricher {
	return &ContentEnricher{groups: groups, comments: comments}
}

func (e *ContentEnricher) Enrich(ctx context.Context, typ domain.NotificationType, ev domain.NotificationEvent) (domain.Content, error) {
	switch typ {
	case domain.TypeFriendRequest:
		return domain.FriendRequestContent{}, nil

	case domain.TypeGroupInvitation:
		if ev.GroupID == "" {
			return nil, fmt.Errorf("empty groupId: %w", domain.ErrGroupNotFound)
		}
		group, err := e.groups.GetGroup(ctx, ev.GroupID)
		if err != nil {
			return nil, err
		}
		return domain.GroupInvitationContent{GroupID: ev.GroupID, GroupName: group.Name}, nil

	case domain.TypeReaction:
		return domain.ReactionContent{
			RelatedItemID: ev.RelatedItemID,
			InteractionID: ev.InteractionID,
		}, nil

	case domain.TypeComment:
		return domain.CommentContent{
			RelatedItemID: ev.RelatedItemID,
			InteractionID: ev.InteractionID,
			Excerpt:       e.commentExcerpt(ctx, ev),
		}, nil

	default:
		return nil, fmt.Errorf("no content for notification type %q", typ)
	}
}

// commentExcerpt degrades to an empty excerpt when the comment cannot be read.
func (e *ContentEnricher) commentExcerpt(ctx context.Context, ev domain.NotificationEvent) string {
	comment, err := e.comments.GetComment(ctx, ev.RelatedItemID, ev.InteractionID)
	if err != nil {
		logger.L().Warn("Comment lookup failed, sending without excerpt",
			zap.String("notificationID", ev.NotificationID),
			zap.String("relatedItemID", ev.RelatedItemID),
			zap.String("interactionID", ev.InteractionID),
			zap.String("traceID", logger.TraceIDFromContext(ctx)),
			zap.Error(err),
		)
		return ""
	}
	return domain.Excerpt(comment.Content)
}
