package domain

import "time"

// NotificationType is the discriminant carried in data.type of every push message.
type NotificationType string

const (
	TypeFriendRequest   NotificationType = "friend_request"
	TypeGroupInvitation NotificationType = "group_invitation"
	TypeReaction        NotificationType = "reaction"
	TypeComment         NotificationType = "comment"
)

// RecordType is the type field written by the app into a stored notification record.
type RecordType string

const (
	RecordFriend          RecordType = "friend"
	RecordGroupInvitation RecordType = "groupInvitation"
	RecordReaction        RecordType = "reaction"
	RecordComment         RecordType = "comment"
)

var recordTypes = map[RecordType]NotificationType{
	RecordFriend:          TypeFriendRequest,
	RecordGroupInvitation: TypeGroupInvitation,
	RecordReaction:        TypeReaction,
	RecordComment:         TypeComment,
}

// NotificationType maps a stored record type onto the push type it produces.
func (r RecordType) NotificationType() (NotificationType, bool) {
	t, ok := recordTypes[r]
	return t, ok
}

// NotificationEvent is a notification record created by the app in the backing store.
type NotificationEvent struct {
	NotificationID      string     `json:"notificationId" bson:"-"`
	Type                RecordType `json:"type" bson:"type"`
	SendUserID          string     `json:"sendUserId" bson:"sendUserId"`
	ReceiveUserID       string     `json:"receiveUserId" bson:"receiveUserId"`
	SendUserDisplayName string     `json:"sendUserDisplayName,omitempty" bson:"sendUserDisplayName,omitempty"`
	GroupID             string     `json:"groupId,omitempty" bson:"groupId,omitempty"`
	RelatedItemID       string     `json:"relatedItemId,omitempty" bson:"relatedItemId,omitempty"`
	InteractionID       string     `json:"interactionId,omitempty" bson:"interactionId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt,omitempty"`
}

// Recipient is the directory view of the user a notification is addressed to.
// An empty DeliveryToken means the user cannot receive pushes.
type Recipient struct {
	UserID        string
	DeliveryToken string
	DisplayName   string
}

type Group struct {
	ID   string
	Name string
}

type Comment struct {
	ID            string
	RelatedItemID string
	Content       string
}
