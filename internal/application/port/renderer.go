// Package port defines the boundaries between the session core and its
// external collaborators: the rendering engine, dialogs, and persistence.
// The core depends on these interfaces only; infrastructure adapters
// implement them.
package port

import "context"

// ContextOptions configures an isolation boundary for browsing state.
type ContextOptions struct {
	// DataDir and CacheDir back cookies, cache, and storage. Ignored for
	// ephemeral contexts.
	DataDir  string
	CacheDir string
	// Ephemeral contexts keep all state in memory and never touch disk.
	Ephemeral bool
}

// RendererContext is an isolation boundary (cookies, cache, storage) shared
// by every view created from it.
type RendererContext interface {
	IsEphemeral() bool
	Close() error
}

// WebEngine creates isolation contexts and views. It is the process-wide
// handle to the rendering engine.
type WebEngine interface {
	NewContext(ctx context.Context, opts ContextOptions) (RendererContext, error)
	NewView(ctx context.Context, rctx RendererContext, events WindowEvents) (WebView, error)
}

// WebView is one rendering surface. All content concerns (scripts, scrolling,
// find-in-page) live behind it.
type WebView interface {
	LoadURL(url string)
	RunScript(js string)
	GrabFocus()
	FindText(text string, backwards bool)
	StopFind()
	Present()
	Close()
}

// WindowEvents receives window-level events from a view. Implementations
// must be safe to call from the engine's event thread; they are expected to
// forward into the orchestrator mailbox rather than mutate state.
type WindowEvents struct {
	// CreateWindow is called when the page requests a new window.
	CreateWindow func(url string, private bool)
	// URLChanged is called on navigation with the previous and new URL.
	URLChanged func(old, new string)
	// Closed is called once when the window goes away; url is the last URL
	// the window showed, empty for a blank window.
	Closed func(url string)
	// DownloadStarted is called when the engine reports a new transfer.
	DownloadStarted func(dl DownloadHandle, suggestedFilename string)
}

// DownloadHandle is the engine-side handle of an in-flight transfer. The
// engine may complete the transfer synchronously as soon as a destination is
// set, so callers must register any open-after-download intent first.
type DownloadHandle interface {
	// Destination returns the currently assigned path, empty if unset.
	Destination() string
	SetDestination(path string)
	// StageForOpening marks the file to be opened once the transfer ends.
	StageForOpening()
	Cancel()
}
