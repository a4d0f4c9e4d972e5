package domain

import (
	"errors"
	"fmt"
)

// Client input errors, reported as 4xx on the HTTP path.
var (
	ErrMethodNotAllowed      = errors.New("method not allowed")
	ErrMissingRequiredFields = errors.New("required parameters (token, notification, data) are missing")
)

// Expected runtime conditions that end a store-triggered dispatch without an error.
var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrNoDeliveryToken   = errors.New("recipient has no delivery token")
	ErrGroupNotFound     = errors.New("group not found")
)

// ErrContentLookup marks a failed comment lookup. The dispatch continues with an empty excerpt.
var ErrContentLookup = errors.New("content lookup failed")

// UnknownErrorCode is reported when a delivery failure carries no provider code.
const UnknownErrorCode = "unknown_error"

// InvalidTypePayloadError reports a payload missing fields required by its data.type.
type InvalidTypePayloadError struct {
	Type    NotificationType
	Missing []string
}

func (e *InvalidTypePayloadError) Error() string {
	return fmt.Sprintf("missing required parameters for %s notification: %v", e.Type, e.Missing)
}

// DeliveryError wraps a push provider failure together with its provider error code.
type DeliveryError struct {
	Code string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed (%s): %v", e.Code, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewDeliveryError wraps err, defaulting the code to UnknownErrorCode.
func NewDeliveryError(code string, err error) *DeliveryError {
	if code == "" {
		code = UnknownErrorCode
	}
	return &DeliveryError{Code: code, Err: err}
}

// IsSoftSkip reports whether err ends a dispatch as an expected skip rather than a failure.
func IsSoftSkip(err error) bool {
	return errors.Is(err, ErrRecipientNotFound) ||
		errors.Is(err, ErrNoDeliveryToken) ||
		errors.Is(err, ErrGroupNotFound)
}

// SkipReason returns a stable label for a soft-skip error, used in logs and metrics.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, ErrNoDeliveryToken):
		return "no_delivery_token"
	case errors.Is(err, ErrGroupNotFound):
		return "group_not_found"
	default:
		return "unknown"
	}
}
