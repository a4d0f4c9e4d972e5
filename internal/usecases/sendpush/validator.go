package sendpush

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/medeiros-dev/push-notification-service/internal/domain"
)

// requiredFields lists the data keys each known type must carry.
// Types not listed are accepted without further checks.
var requiredFields = map[domain.NotificationType][]string{
	domain.TypeFriendRequest:   {"fromUserId", "toUserId"},
	domain.TypeGroupInvitation: {"groupId", "fromUserId"},
	domain.TypeReaction:        {"fromUserId", "scheduleId", "interactionId"},
	domain.TypeComment:         {"fromUserId", "scheduleId", "interactionId"},
}

func ValidateMethod(method string) error {
	if method != http.MethodPost {
		return domain.ErrMethodNotAllowed
	}
	return nil
}

// ValidateRequest checks the envelope and the per-type required fields.
// The input is never modified.
func ValidateRequest(input SendPushInputDTO) (ValidatedRequest, error) {
	if input.Token == "" || input.Notification == nil || input.Data == nil {
		return ValidatedRequest{}, domain.ErrMissingRequiredFields
	}

	typ := stringify(input.Data["type"])
	if required, ok := requiredFields[domain.NotificationType(typ)]; ok {
		var missing []string
		for _, field := range required {
			if isMissing(input.Data, field) {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return ValidatedRequest{}, &domain.InvalidTypePayloadError{
				Type:    domain.NotificationType(typ),
				Missing: missing,
			}
		}
	}

	data := make(map[string]string, len(input.Data))
	for k, v := range input.Data {
		if v == nil {
			continue
		}
		data[k] = stringify(v)
	}

	return ValidatedRequest{
		Token: input.Token,
		Title: input.Notification.Title,
		Body:  input.Notification.Body,
		Type:  typ,
		Data:  data,
	}, nil
}

// isMissing treats absent and falsy values (null, "", false, 0) as missing.
func isMissing(data map[string]any, field string) bool {
	v, ok := data[field]
	if !ok || v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	}
	return false
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
