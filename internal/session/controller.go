package session

import (
	"context"
	"fmt"

	"github.com/vitrebrowser/vitre/internal/application/port"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
	"github.com/vitrebrowser/vitre/internal/downloads"
	"github.com/vitrebrowser/vitre/internal/logging"
)

// WindowController wraps one renderer view and forwards its window-level
// events into the orchestrator mailbox. It owns no session state.
type WindowController struct {
	window    *entity.Window
	view      port.WebView
	ctxHandle *ContextHandle
	send      func(Msg)
	coord     *downloads.Coordinator

	// previousURLs seeds the window's "reopen previous session" offering.
	// Always empty for private windows.
	previousURLs []string
}

func newWindowController(
	ctx context.Context,
	engine port.WebEngine,
	window *entity.Window,
	ctxHandle *ContextHandle,
	coord *downloads.Coordinator,
	previousURLs []string,
	send func(Msg),
) (*WindowController, error) {
	ctx = logging.WithWindowID(ctx, string(window.ID))
	log := logging.FromContext(ctx)

	wc := &WindowController{
		window:    window,
		ctxHandle: ctxHandle,
		send:      send,
		coord:     coord,
	}
	if !window.Privacy.IsPrivate() {
		wc.previousURLs = previousURLs
	}

	view, err := engine.NewView(ctx, ctxHandle.Context(), port.WindowEvents{
		CreateWindow: func(url string, private bool) {
			privacy := entity.PrivacyNormal
			if private || window.Privacy.IsPrivate() {
				privacy = entity.PrivacyPrivate
			}
			send(RequestNewWindow{URL: url, Privacy: privacy})
		},
		URLChanged: func(old, new string) {
			wc.window.URL = new
			send(NotifyURLChanged{Old: old, New: new, Privacy: window.Privacy})
		},
		Closed: func(url string) {
			ctxHandle.Release()
			send(NotifyWindowClosed{WindowID: window.ID, URL: url, Privacy: window.Privacy})
		},
		DownloadStarted: func(dl port.DownloadHandle, suggestedFilename string) {
			// Downloads outlive the window that started them; the
			// coordinator owns the rest of the negotiation.
			coord.HandleDownloadStarted(ctx, dl, suggestedFilename)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create view for window %s: %w", window.ID, err)
	}
	wc.view = view

	if window.URL != "" {
		view.LoadURL(window.URL)
	}
	view.Present()

	log.Info().
		Str("privacy", window.Privacy.String()).
		Str("url", window.URL).
		Msg("window created")
	return wc, nil
}

// Window returns the controller's window entity.
func (wc *WindowController) Window() *entity.Window {
	return wc.window
}

// PreviousURLs returns the URLs the previous session had open, for the
// window's reopen offering. Empty for private windows.
func (wc *WindowController) PreviousURLs() []string {
	return wc.previousURLs
}

// Close tears the window down from the orchestrator side. The view's Closed
// event performs the bookkeeping.
func (wc *WindowController) Close() {
	wc.view.Close()
}
