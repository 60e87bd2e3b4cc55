// Package session implements the orchestrator that owns every live window,
// the open-URL set, and the two privacy contexts. It is a single-goroutine
// actor: all session state is confined to the Run loop and mutated only by
// message handlers, so no lock guards the URL set or the window count.
package session

import (
	"context"
	"sort"

	"github.com/vitrebrowser/vitre/internal/application/port"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
	"github.com/vitrebrowser/vitre/internal/downloads"
	"github.com/vitrebrowser/vitre/internal/logging"
)

const mailboxSize = 128

// Options wires the orchestrator's collaborators.
type Options struct {
	Engine    port.WebEngine
	Store     port.URLStore
	Contexts  *ContextManager
	Downloads *downloads.Coordinator
}

// Orchestrator is the single owner of mutable session state.
type Orchestrator struct {
	mailbox chan Msg
	hold    *Hold

	engine   port.WebEngine
	store    port.URLStore
	contexts *ContextManager
	coord    *downloads.Coordinator

	// State below is confined to the Run goroutine.
	openURLs       map[string]struct{}
	previouslyOpen []string
	windowCount    int
	windows        map[entity.WindowID]*WindowController
}

// New creates an orchestrator. Run must be started before Bootstrap.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		mailbox:  make(chan Msg, mailboxSize),
		hold:     &Hold{},
		engine:   opts.Engine,
		store:    opts.Store,
		contexts: opts.Contexts,
		coord:    opts.Downloads,
		openURLs: make(map[string]struct{}),
		windows:  make(map[entity.WindowID]*WindowController),
	}
}

// Send delivers a message to the mailbox. Messages from one sender are
// handled in send order.
func (o *Orchestrator) Send(msg Msg) {
	o.mailbox <- msg
}

// Bootstrap requests the startup batch of windows: one per launch URL in
// argument order, or a single blank window when the list is empty, then
// releases the startup hold exactly once.
func (o *Orchestrator) Bootstrap(urls []string, privacy entity.Privacy) {
	o.hold.Acquire()
	if len(urls) == 0 {
		o.Send(RequestNewWindow{Privacy: privacy})
	} else {
		for _, url := range urls {
			o.Send(RequestNewWindow{URL: url, Privacy: privacy})
		}
	}
	o.Send(ReleaseStartupHold{})
}

// Run loads the previous session's URLs and processes the mailbox until the
// startup hold is released and the last window has closed, or ctx is
// cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "session")
	o.loadPreviousURLs(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-o.mailbox:
			o.handle(ctx, msg)
			if !o.hold.Held() && o.windowCount == 0 {
				return nil
			}
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, msg Msg) {
	switch m := msg.(type) {
	case RequestNewWindow:
		o.addWindow(ctx, m)
	case ReleaseStartupHold:
		// The hold was acquired to create the startup windows
		// asynchronously. All of them have been requested by now.
		o.hold.Release()
	case NotifyURLChanged:
		o.changeURL(ctx, m)
	case NotifyWindowClosed:
		o.removeWindow(ctx, m)
	}
}

func (o *Orchestrator) addWindow(ctx context.Context, msg RequestNewWindow) {
	log := logging.FromContext(ctx)

	window := entity.NewWindow(msg.URL, msg.Privacy)
	handle := o.contexts.Select(msg.Privacy)

	wc, err := newWindowController(ctx, o.engine, window, handle, o.coord, o.previouslyOpen, o.Send)
	if err != nil {
		handle.Release()
		log.Error().Err(err).Str("url", msg.URL).Msg("failed to create window")
		return
	}

	o.windowCount++
	o.windows[window.ID] = wc

	if msg.URL != "" && !msg.Privacy.IsPrivate() {
		o.openURLs[msg.URL] = struct{}{}
		o.persist(ctx)
	}
}

func (o *Orchestrator) changeURL(ctx context.Context, msg NotifyURLChanged) {
	if msg.Privacy.IsPrivate() {
		return
	}
	if msg.Old != "" {
		delete(o.openURLs, msg.Old)
	}
	if msg.New != "" {
		o.openURLs[msg.New] = struct{}{}
	}
	o.persist(ctx)
}

func (o *Orchestrator) removeWindow(ctx context.Context, msg NotifyWindowClosed) {
	delete(o.windows, msg.WindowID)

	if !msg.Privacy.IsPrivate() && msg.URL != "" {
		delete(o.openURLs, msg.URL)
	}
	o.persist(ctx)

	if o.windowCount > 0 {
		o.windowCount--
	}
	if o.windowCount == 0 {
		// Clean full shutdown: clear the log so the next launch is not
		// mistaken for crash recovery.
		o.openURLs = make(map[string]struct{})
		o.persist(ctx)
	}
}

// loadPreviousURLs seeds the reopen-previous-session offering. Best-effort:
// a read failure is logged and yields an empty set, never a startup failure.
func (o *Orchestrator) loadPreviousURLs(ctx context.Context) {
	log := logging.FromContext(ctx)

	urls, err := o.store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load previously open urls")
		return
	}
	o.previouslyOpen = urls
}

// persist saves the open-URL set synchronously, before control returns to
// the message loop. Failures are logged: this is recovery data, not critical
// state.
func (o *Orchestrator) persist(ctx context.Context) {
	log := logging.FromContext(ctx)

	urls := make([]string, 0, len(o.openURLs))
	for url := range o.openURLs {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	if err := o.store.Save(ctx, urls); err != nil {
		log.Error().Err(err).Msg("cannot save open urls")
	}
}
