package eventwatcher

import (
	"context"
	"fmt"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
	"github.com/medeiros-dev/push-notification-service/internal/domain/port/directory"
)

// RecipientResolver looks the recipient up on every call; nothing is cached.
type RecipientResolver struct {
	users directory.UserDirectory
}

func NewRecipientResolver(users directory.UserDirectory) *RecipientResolver {
	return &RecipientResolver{users: users}
}

// Resolve returns a recipient that has a delivery token, or a soft-skip error
// when the user is unknown or cannot receive pushes.
func (r *RecipientResolver) Resolve(ctx context.Context, userID string) (domain.Recipient, error) {
	if userID == "" {
		return domain.Recipient{}, fmt.Errorf("empty receiveUserId: %w", domain.ErrRecipientNotFound)
	}

	recipient, err := r.users.GetRecipient(ctx, userID)
	if err != nil {
		return domain.Recipient{}, err
	}
	if recipient.DeliveryToken == "" {
		return domain.Recipient{}, fmt.Errorf("user %s: %w", userID, domain.ErrNoDeliveryToken)
	}
	return recipient, nil
}
