package eventwatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/medeiros-dev/push-notification-service/internal/app/delivery"
	"github.com/medeiros-dev/push-notification-service/internal/app/message"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var allRecordTypes = []string{"friend", "groupInvitation", "reaction", "comment"}

type fixture struct {
	users    *MockUserDirectory
	groups   *MockGroupDirectory
	comments *MockCommentStore
	sender   *MockSender
	watcher  *Watcher
}

func newFixture(watched []string) *fixture {
	f := &fixture{
		users:    new(MockUserDirectory),
		groups:   new(MockGroupDirectory),
		comments: new(MockCommentStore),
		sender:   new(MockSender),
	}
	f.watcher = NewEventWatcher(f.users, f.groups, f.comments, message.NewBuilder(), delivery.NewClient(f.sender), watched)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.users.AssertExpectations(t)
	f.groups.AssertExpectations(t)
	f.comments.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestWatcher_FriendRequestEndToEnd(t *testing.T) {
	f := newFixture(allRecordTypes)
	f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{UserID: "u-2", DeliveryToken: "tok-2"}, nil).Once()

	var sent domain.PushMessage
	f.sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(domain.PushMessage)
	}).Return("projects/p/messages/1", nil).Once()

	res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
		NotificationID:      "n-1",
		Type:                domain.RecordFriend,
		SendUserID:          "u-1",
		ReceiveUserID:       "u-2",
		SendUserDisplayName: "Taro",
	})

	require.NoError(t, err)
	f.assertExpectations(t)
	f.sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, Result{Outcome: OutcomeDelivered, MessageID: "projects/p/messages/1"}, res)
	assert.Equal(t, "tok-2", sent.Token)
	assert.Equal(t, "Friend request received", sent.Title)
	assert.Equal(t, "Taro sent you a friend request", sent.Body)
	assert.Equal(t, "friend_request", sent.Data["type"])
	assert.Equal(t, "u-1", sent.Data["fromUserId"])
	assert.Equal(t, "u-2", sent.Data["toUserId"])
	assert.Equal(t, "n-1", sent.Data["notificationId"])
	assert.NotEmpty(t, sent.Data["timestamp"])
}

func TestWatcher_MissingTokenSkipsWithoutDelivery(t *testing.T) {
	f := newFixture(allRecordTypes)
	f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{UserID: "u-2"}, nil).Once()

	res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
		Type:          domain.RecordReaction,
		SendUserID:    "u-1",
		ReceiveUserID: "u-2",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, "no_delivery_token", res.Reason)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestWatcher_MissingGroupSkipsWithoutMessage(t *testing.T) {
	f := newFixture(allRecordTypes)
	f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{UserID: "u-2", DeliveryToken: "tok-2"}, nil).Once()
	f.groups.On("GetGroup", mock.Anything, "g-404").Return(domain.Group{}, domain.ErrGroupNotFound).Once()

	res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
		Type:          domain.RecordGroupInvitation,
		SendUserID:    "u-1",
		ReceiveUserID: "u-2",
		GroupID:       "g-404",
	})

	require.NoError(t, err)
	assert.Equal(t, Result{Outcome: OutcomeSkipped, Reason: "group_not_found"}, res)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestWatcher_UnknownRecipientSkips(t *testing.T) {
	f := newFixture(allRecordTypes)
	f.users.On("GetRecipient", mock.Anything, "ghost").Return(domain.Recipient{}, domain.ErrRecipientNotFound).Once()

	res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
		Type:          domain.RecordFriend,
		ReceiveUserID: "ghost",
	})

	require.NoError(t, err)
	assert.Equal(t, "recipient_not_found", res.Reason)
	f.assertExpectations(t)
}

func TestWatcher_Filtering(t *testing.T) {
	tests := []struct {
		name    string
		watched []string
		record  domain.RecordType
	}{
		{name: "record type outside accepted set", watched: []string{"friend"}, record: domain.RecordComment},
		{name: "unmapped record type", watched: nil, record: "message"},
		{name: "empty record type", watched: allRecordTypes, record: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.watched)

			res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
				Type:          tt.record,
				ReceiveUserID: "u-2",
			})

			require.NoError(t, err)
			assert.Equal(t, OutcomeFiltered, res.Outcome)
			f.users.AssertNotCalled(t, "GetRecipient", mock.Anything, mock.Anything)
			f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestWatcher_CommentWithUnreadableContent(t *testing.T) {
	f := newFixture(allRecordTypes)
	f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{UserID: "u-2", DeliveryToken: "tok-2"}, nil).Once()
	f.comments.On("GetComment", mock.Anything, "s-1", "c-1").Return(domain.Comment{}, domain.ErrContentLookup).Once()
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(msg domain.PushMessage) bool {
		return msg.Body == "a new user commented on your post" &&
			msg.Data["type"] == "comment" &&
			msg.Data["relatedItemId"] == "s-1" &&
			msg.Data["interactionId"] == "c-1"
	})).Return("msg-7", nil).Once()

	res, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{
		Type:          domain.RecordComment,
		SendUserID:    "u-1",
		ReceiveUserID: "u-2",
		RelatedItemID: "s-1",
		InteractionID: "c-1",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	f.assertExpectations(t)
}

func TestWatcher_Failures(t *testing.T) {
	t.Run("directory failure propagates", func(t *testing.T) {
		f := newFixture(allRecordTypes)
		lookupErr := errors.New("connection refused")
		f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{}, lookupErr).Once()

		err := f.watcher.Handle(context.Background(), domain.NotificationEvent{Type: domain.RecordFriend, ReceiveUserID: "u-2"})

		assert.ErrorIs(t, err, lookupErr)
		f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("delivery failure carries provider code", func(t *testing.T) {
		f := newFixture(allRecordTypes)
		f.users.On("GetRecipient", mock.Anything, "u-2").Return(domain.Recipient{UserID: "u-2", DeliveryToken: "tok-2"}, nil).Once()
		f.sender.On("Send", mock.Anything, mock.Anything).
			Return("", domain.NewDeliveryError("messaging/registration-token-not-registered", errors.New("gone"))).Once()

		_, err := f.watcher.Dispatch(context.Background(), domain.NotificationEvent{Type: domain.RecordFriend, ReceiveUserID: "u-2"})

		var delivery *domain.DeliveryError
		require.ErrorAs(t, err, &delivery)
		assert.Equal(t, "messaging/registration-token-not-registered", delivery.Code)
		f.sender.AssertNumberOfCalls(t, "Send", 1)
	})
}
