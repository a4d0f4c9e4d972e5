package domain

// PushMessage is a fully assembled message for a single device token.
type PushMessage struct {
	Token   string
	Title   string
	Body    string
	Data    map[string]string
	Android AndroidHints
	APNS    APNSHints
}

// AndroidHints are the presentation settings for Android devices.
type AndroidHints struct {
	Icon        string
	Color       string
	ClickAction string
}

// APNSHints are the presentation settings for Apple devices.
type APNSHints struct {
	Badge int
	Sound string
}
