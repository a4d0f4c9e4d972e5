package sendpush

import (
	"github.com/medeiros-dev/push-notification-service/internal/app/message"
)

func NewSendPush(builder *message.Builder, deliverer Deliverer) *SendPushHandler {
	useCase := NewSendPushUseCase(builder, deliverer)
	return NewSendPushHandler(useCase)
}
