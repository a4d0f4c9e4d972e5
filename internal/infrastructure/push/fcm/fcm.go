package fcm

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/medeiros-dev/push-notification-service/configs"
	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Provider error codes reported to callers.
const (
	CodeUnregistered      = "messaging/registration-token-not-registered"
	CodeInvalidArgument   = "messaging/invalid-argument"
	CodeQuotaExceeded     = "messaging/message-rate-exceeded"
	CodeSenderIDMismatch  = "messaging/mismatched-credential"
	CodeThirdPartyAuth    = "messaging/third-party-auth-error"
	CodeServerUnavailable = "messaging/server-unavailable"
	CodeInternal          = "messaging/internal-error"
)

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Sender delivers push messages through Firebase Cloud Messaging.
type Sender struct {
	client messagingClient
}

func NewSender(client messagingClient) *Sender {
	return &Sender{client: client}
}

// NewSenderFromConfig builds a Firebase app from the configured project and
// service-account file. Without a credentials file, application default
// credentials are used.
func NewSenderFromConfig(ctx context.Context, cfg *configs.Config) (*Sender, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	logger.L().Info("Firebase messaging client initialized",
		zap.String("projectID", cfg.FirebaseProjectID),
		zap.Bool("credentialsFile", cfg.FirebaseCredentialsFile != ""),
	)
	return NewSender(client), nil
}

func (s *Sender) Send(ctx context.Context, msg domain.PushMessage) (string, error) {
	id, err := s.client.Send(ctx, toMessage(msg))
	if err != nil {
		return "", domain.NewDeliveryError(ErrorCode(err), err)
	}
	return id, nil
}

func toMessage(msg domain.PushMessage) *messaging.Message {
	out := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	if msg.Android != (domain.AndroidHints{}) {
		out.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Icon:        msg.Android.Icon,
				Color:       msg.Android.Color,
				ClickAction: msg.Android.ClickAction,
			},
		}
	}

	if msg.APNS != (domain.APNSHints{}) {
		badge := msg.APNS.Badge
		out.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Badge: &badge,
					Sound: msg.APNS.Sound,
				},
			},
		}
	}

	return out
}

// ErrorCode maps a messaging error onto its provider code, or
// domain.UnknownErrorCode when the error carries none.
func ErrorCode(err error) string {
	var delivery *domain.DeliveryError
	if errors.As(err, &delivery) {
		return delivery.Code
	}

	switch {
	case messaging.IsUnregistered(err):
		return CodeUnregistered
	case errorutils.IsInvalidArgument(err):
		return CodeInvalidArgument
	case messaging.IsQuotaExceeded(err):
		return CodeQuotaExceeded
	case messaging.IsSenderIDMismatch(err):
		return CodeSenderIDMismatch
	case messaging.IsThirdPartyAuthError(err):
		return CodeThirdPartyAuth
	case errorutils.IsUnavailable(err):
		return CodeServerUnavailable
	case errorutils.IsInternal(err):
		return CodeInternal
	default:
		return domain.UnknownErrorCode
	}
}
