package eventwatcher

import (
	"context"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetRecipient(ctx context.Context, userID string) (domain.Recipient, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Recipient), args.Error(1)
}

type MockGroupDirectory struct {
	mock.Mock
}

func (m *MockGroupDirectory) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(domain.Group), args.Error(1)
}

type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) GetComment(ctx context.Context, relatedItemID, commentID string) (domain.Comment, error) {
	args := m.Called(ctx, relatedItemID, commentID)
	return args.Get(0).(domain.Comment), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg domain.PushMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
