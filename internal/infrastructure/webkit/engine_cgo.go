//go:build webkit_cgo

package webkit

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/vitrebrowser/vitre/internal/application/port"
)

// Engine owns the GTK main loop and creates network sessions and views.
// NewEngine must be called from the goroutine that will later call Run; that
// goroutine is locked to its OS thread and becomes the GTK main thread.
type Engine struct {
	loop *glib.MainLoop
}

// NewEngine initializes GTK and prepares the main loop.
func NewEngine() (*Engine, error) {
	runtime.LockOSThread()
	gtk.Init()
	return &Engine{loop: glib.NewMainLoop(nil, false)}, nil
}

// Run drives the GTK main loop until Quit is called. Blocks.
func (e *Engine) Run() {
	e.loop.Run()
}

// Quit stops the main loop. Safe to call from any goroutine.
func (e *Engine) Quit() {
	glib.IdleAdd(func() bool {
		e.loop.Quit()
		return false
	})
}

// onMainThread schedules fn on the GTK main thread and returns immediately.
func onMainThread(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

// callMainThread runs fn on the GTK main thread and waits for it.
func callMainThread(fn func()) {
	done := make(chan struct{})
	glib.IdleAdd(func() bool {
		fn()
		close(done)
		return false
	})
	<-done
}

// rendererContext wraps a WebKitNetworkSession. One session per privacy
// class; every view created from it shares its cookies, cache, and storage.
type rendererContext struct {
	session   *webkit.NetworkSession
	ephemeral bool
}

func (c *rendererContext) IsEphemeral() bool { return c.ephemeral }

// Close drops the Go reference. WebKit tears the session down once the last
// view using it is destroyed.
func (c *rendererContext) Close() error {
	c.session = nil
	return nil
}

// NewContext creates a network session. Persistent sessions get on-disk
// cookie storage; ephemeral ones keep everything in memory.
func (e *Engine) NewContext(ctx context.Context, opts port.ContextOptions) (port.RendererContext, error) {
	var rctx *rendererContext
	var err error
	callMainThread(func() {
		rctx, err = newContext(opts)
	})
	if err != nil {
		return nil, err
	}
	return rctx, nil
}

func newContext(opts port.ContextOptions) (*rendererContext, error) {
	if opts.Ephemeral {
		session := webkit.NewNetworkSessionEphemeral()
		if session == nil {
			return nil, fmt.Errorf("webkit: create ephemeral network session")
		}
		return &rendererContext{session: session, ephemeral: true}, nil
	}

	session := webkit.NewNetworkSession(opts.DataDir, opts.CacheDir)
	if session == nil {
		return nil, fmt.Errorf("webkit: create persistent network session")
	}
	if session.IsEphemeral() {
		return nil, fmt.Errorf("webkit: session is ephemeral despite data directories")
	}

	// Without explicit persistent storage WebKit keeps cookies in memory
	// even for a persistent session.
	cookies := session.CookieManager()
	if cookies == nil {
		return nil, fmt.Errorf("webkit: get cookie manager")
	}
	cookies.SetPersistentStorage(filepath.Join(opts.DataDir, "cookies.db"), webkit.CookiePersistentStorageSqlite)
	cookies.SetAcceptPolicy(webkit.CookiePolicyAcceptNoThirdParty)
	session.SetPersistentCredentialStorageEnabled(true)

	return &rendererContext{session: session}, nil
}
