package model

// Notification is a local desktop alert raised when an archival pass
// fails outside of test mode.
type Notification struct {
	// Title is the bold heading of the alert.
	Title string `json:"title"`

	// Subtitle is shown under the title where the platform supports it.
	Subtitle string `json:"subtitle"`

	// Message is the body text.
	Message string `json:"message"`
}
