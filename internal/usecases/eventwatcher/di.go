package eventwatcher

import (
	"github.com/medeiros-dev/push-notification-service/internal/app/message"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/directory"
)

func NewEventWatcher(
	users directory.UserDirectory,
	groups directory.GroupDirectory,
	comments directory.CommentStore,
	builder *message.Builder,
	deliverer Deliverer,
	watched []string,
) *Watcher {
	return NewWatcher(
		NewRecipientResolver(users),
		NewContentEnricher(groups, comments),
		builder,
		deliverer,
		watched,
	)
}
