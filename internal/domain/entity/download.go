package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// DownloadState tracks an in-flight transfer's destination negotiation.
type DownloadState int

const (
	// DownloadAwaitingDestination is the initial state: no destination has
	// been negotiated yet.
	DownloadAwaitingDestination DownloadState = iota
	// DownloadAwaitingConfirmation means a destination candidate exists but
	// the user must answer an overwrite question first.
	DownloadAwaitingConfirmation
	// DownloadConfirmed is terminal: the destination is committed and the
	// transfer is handed to the renderer.
	DownloadConfirmed
	// DownloadCancelled is terminal.
	DownloadCancelled
)

func (s DownloadState) String() string {
	switch s {
	case DownloadAwaitingDestination:
		return "awaiting_destination"
	case DownloadAwaitingConfirmation:
		return "awaiting_confirmation"
	case DownloadConfirmed:
		return "confirmed"
	case DownloadCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// IsTerminal reports whether the state ends the download's lifecycle.
func (s DownloadState) IsTerminal() bool {
	return s == DownloadConfirmed || s == DownloadCancelled
}

// Download represents one in-flight transfer.
type Download struct {
	ID                string
	SuggestedFilename string
	Destination       string // empty while unresolved
	State             DownloadState
}

// NewDownload creates a download awaiting destination resolution.
func NewDownload(suggestedFilename string) *Download {
	return &Download{
		ID:                uuid.NewString(),
		SuggestedFilename: suggestedFilename,
		State:             DownloadAwaitingDestination,
	}
}

// Transition moves the download to the next state, rejecting moves out of a
// terminal state and skips of the confirmation step that the state machine
// does not allow.
func (d *Download) Transition(next DownloadState) error {
	if d.State.IsTerminal() {
		return fmt.Errorf("download %s: cannot leave terminal state %s", d.ID, d.State)
	}
	switch {
	case d.State == DownloadAwaitingDestination && next != DownloadAwaitingDestination:
		// AwaitingDestination may move to any of the three other states.
	case d.State == DownloadAwaitingConfirmation && next.IsTerminal():
		// AwaitingConfirmation resolves to Confirmed or Cancelled only.
	default:
		return fmt.Errorf("download %s: invalid transition %s -> %s", d.ID, d.State, next)
	}
	d.State = next
	return nil
}

// Confirm commits the destination and ends the negotiation.
func (d *Download) Confirm(destination string) error {
	if err := d.Transition(DownloadConfirmed); err != nil {
		return err
	}
	d.Destination = destination
	return nil
}

// Cancel ends the negotiation without a destination.
func (d *Download) Cancel() error {
	return d.Transition(DownloadCancelled)
}
