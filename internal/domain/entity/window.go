package entity

import "github.com/google/uuid"

// WindowID uniquely identifies a browsing window for its lifetime.
type WindowID string

// NewWindowID generates a fresh window identifier.
func NewWindowID() WindowID {
	return WindowID(uuid.NewString())
}

// Window represents one browsing surface. Windows are created and destroyed
// only through the session orchestrator and never outlive their session.
type Window struct {
	ID      WindowID
	URL     string // empty when the window shows a blank page
	Privacy Privacy
}

// NewWindow creates a window bound to the given privacy class.
func NewWindow(url string, privacy Privacy) *Window {
	return &Window{
		ID:      NewWindowID(),
		URL:     url,
		Privacy: privacy,
	}
}
