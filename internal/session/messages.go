package session

import "github.com/vitrebrowser/vitre/internal/domain/entity"

// Msg is a message accepted by the orchestrator mailbox. All session state
// mutations happen inside the orchestrator's message handlers; components
// never touch session state directly.
type Msg interface {
	isSessionMsg()
}

// RequestNewWindow asks for a new browsing window bound to the given privacy
// class. URL may be empty for a blank window. No error is surfaced to the
// sender; persistence failures are logged and never block window creation.
type RequestNewWindow struct {
	URL     string
	Privacy entity.Privacy
}

// ReleaseStartupHold signals that the startup batch of windows has been
// fully requested and the process may exit once all windows close. Sent
// exactly once per startup batch.
type ReleaseStartupHold struct{}

// NotifyURLChanged reports a navigation. Old may be empty when the window
// was blank. Idempotent: repeating a transition is a no-op beyond a
// redundant persist.
type NotifyURLChanged struct {
	Old     string
	New     string
	Privacy entity.Privacy
}

// NotifyWindowClosed reports that a window went away. URL is the last URL
// the window showed, empty for a blank window.
type NotifyWindowClosed struct {
	WindowID entity.WindowID
	URL      string
	Privacy  entity.Privacy
}

func (RequestNewWindow) isSessionMsg()   {}
func (ReleaseStartupHold) isSessionMsg() {}
func (NotifyURLChanged) isSessionMsg()   {}
func (NotifyWindowClosed) isSessionMsg() {}
