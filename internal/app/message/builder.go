package message

import (
	"strconv"
	"time"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
)

// DefaultSenderName replaces a missing sender display name in message bodies.
const DefaultSenderName = "a new user"

var (
	defaultAndroid = domain.AndroidHints{
		Icon:        "notification_icon",
		Color:       "#ffa600",
		ClickAction: "FLUTTER_NOTIFICATION_CLICK",
	}
	defaultAPNS = domain.APNSHints{
		Badge: 1,
		Sound: "default",
	}
)

// Envelope is everything the builder needs besides the recipient token.
type Envelope struct {
	NotificationID string
	FromUserID     string
	ToUserID       string
	SenderName     string
	Content        domain.Content
}

type Builder struct {
	now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build assembles the message for a store-triggered dispatch.
func (b *Builder) Build(token string, env Envelope) domain.PushMessage {
	sender := env.SenderName
	if sender == "" {
		sender = DefaultSenderName
	}

	data := map[string]string{
		"type":       string(env.Content.Type()),
		"fromUserId": env.FromUserID,
		"toUserId":   env.ToUserID,
		"timestamp":  b.timestamp(),
	}
	if env.NotificationID != "" {
		data["notificationId"] = env.NotificationID
	}
	for k, v := range env.Content.Fields() {
		data[k] = v
	}

	return domain.PushMessage{
		Token:   token,
		Title:   env.Content.Title(),
		Body:    env.Content.Body(sender),
		Data:    data,
		Android: defaultAndroid,
		APNS:    defaultAPNS,
	}
}

// FromRequest assembles the message for an HTTP send. The caller's title, body
// and data are kept verbatim; a timestamp is added only when data has none.
func (b *Builder) FromRequest(token, title, body string, data map[string]string) domain.PushMessage {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	if _, ok := out["timestamp"]; !ok {
		out["timestamp"] = b.timestamp()
	}

	return domain.PushMessage{
		Token:   token,
		Title:   title,
		Body:    body,
		Data:    out,
		Android: defaultAndroid,
		APNS:    defaultAPNS,
	}
}

func (b *Builder) timestamp() string {
	return strconv.FormatInt(b.now().UnixMilli(), 10)
}
