package sendpush

// SendPushInputDTO is the inbound HTTP payload. Data values may be any JSON
// scalar; they are stringified before sending.
type SendPushInputDTO struct {
	Token        string           `json:"token"`
	Notification *NotificationDTO `json:"notification"`
	Data         map[string]any   `json:"data"`
}

type NotificationDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SendPushOutputDTO struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

type ErrorOutputDTO struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidatedRequest is a payload that passed validation, with data flattened to strings.
type ValidatedRequest struct {
	Token string
	Title string
	Body  string
	Type  string
	Data  map[string]string
}
