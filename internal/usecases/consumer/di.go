package consumer

import (
	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/source"
)

func NewConsumer(sources []source.EventSource, dispatcher EventDispatcher, cfg configs.ConsumerConfig) *ConsumerHandler {
	size := cfg.WorkerPoolSize
	if size <= 0 {
		size = DefaultWorkerPoolSize
	}
	semaphore := make(chan struct{}, size)
	return NewConsumerHandler(NewConsumerUseCase(sources, dispatcher, semaphore))
}
