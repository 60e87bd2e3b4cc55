//go:build webkit_cgo

package webkit

/*
#cgo pkg-config: webkitgtk-6.0 gtk4
#include <webkit/webkit.h>
#include <gtk/gtk.h>
#include <stdlib.h>

// The network-session property is construct-only, so it must be set during
// g_object_new; gotk4's NewWebView only builds views on the default session.
static WebKitWebView* create_web_view_with_session(WebKitNetworkSession* session) {
	return WEBKIT_WEB_VIEW(g_object_new(
		WEBKIT_TYPE_WEB_VIEW,
		"network-session", session,
		NULL
	));
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/vitrebrowser/vitre/internal/application/port"
)

const (
	defaultWindowWidth  = 1024
	defaultWindowHeight = 768
	findMaxMatches      = ^uint32(0)
)

// view is one WebKit rendering surface inside its own top-level window.
type view struct {
	win *gtk.Window
	wv  *webkit.WebView

	session    *webkit.NetworkSession
	downloadID coreglib.SignalHandle

	events port.WindowEvents

	mu        sync.Mutex
	lastURL   string
	destroyed bool
	closeOnce sync.Once
}

// NewView creates a window with a WebView bound to the context's network
// session and wires its signals into events.
func (e *Engine) NewView(ctx context.Context, rctx port.RendererContext, events port.WindowEvents) (port.WebView, error) {
	rc, ok := rctx.(*rendererContext)
	if !ok || rc.session == nil {
		return nil, fmt.Errorf("webkit: renderer context is closed or foreign")
	}

	var v *view
	var err error
	callMainThread(func() {
		v, err = newView(rc, events)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func newView(rc *rendererContext, events port.WindowEvents) (*view, error) {
	wv := newSessionWebView(rc.session)
	if wv == nil {
		return nil, fmt.Errorf("webkit: create web view")
	}

	win := gtk.NewWindow()
	win.SetTitle("vitre")
	win.SetDefaultSize(defaultWindowWidth, defaultWindowHeight)
	win.SetChild(wv)

	v := &view{win: win, wv: wv, session: rc.session, events: events}
	v.connectSignals(rc)
	return v, nil
}

// newSessionWebView constructs a WebView on the given session via g_object_new
// and wraps the result into gotk4's struct hierarchy by hand, the same way
// gotk4 wraps objects internally.
func newSessionWebView(session *webkit.NetworkSession) *webkit.WebView {
	native := (*C.WebKitNetworkSession)(unsafe.Pointer(coreglib.InternObject(session).Native()))
	raw := C.create_web_view_with_session(native)
	if raw == nil {
		return nil
	}

	obj := coreglib.Take(unsafe.Pointer(raw))
	widget := gtk.Widget{
		InitiallyUnowned: coreglib.InitiallyUnowned{Object: obj},
		Object:           obj,
		Accessible:       gtk.Accessible{Object: obj},
		Buildable:        gtk.Buildable{Object: obj},
		ConstraintTarget: gtk.ConstraintTarget{Object: obj},
	}
	return &webkit.WebView{WebViewBase: webkit.WebViewBase{Widget: widget}}
}

func (v *view) connectSignals(rc *rendererContext) {
	v.wv.Connect("notify::uri", func() {
		uri := v.wv.URI()
		v.mu.Lock()
		old := v.lastURL
		if uri == "" || uri == old {
			v.mu.Unlock()
			return
		}
		v.lastURL = uri
		v.mu.Unlock()
		if v.events.URLChanged != nil {
			v.events.URLChanged(old, uri)
		}
	})

	// A page-requested popup is reported upwards instead of letting WebKit
	// build the view; the session core opens the window through its own path.
	v.wv.ConnectCreate(func(nav *webkit.NavigationAction) gtk.Widgetter {
		if v.events.CreateWindow != nil {
			url := ""
			if req := nav.Request(); req != nil {
				url = req.URI()
			}
			v.events.CreateWindow(url, false)
		}
		return nil
	})

	// window.close() from the page destroys the window, which in turn fires
	// the closed event exactly once.
	v.wv.ConnectClose(func() {
		v.win.Destroy()
	})
	v.win.ConnectDestroy(func() {
		v.fireClosed()
	})
	v.win.ConnectCloseRequest(func() bool {
		v.fireClosed()
		return false
	})

	// download-started is a session signal; filter on the originating view so
	// each window only negotiates its own transfers.
	self := coreglib.InternObject(v.wv).Native()
	v.downloadID = rc.session.ConnectDownloadStarted(func(dl *webkit.Download) {
		owner := dl.WebView()
		if owner == nil || coreglib.InternObject(owner).Native() != self {
			return
		}
		h := &downloadHandle{dl: dl}
		dl.ConnectDecideDestination(func(suggested string) bool {
			if v.events.DownloadStarted != nil {
				v.events.DownloadStarted(h, suggested)
			}
			return true
		})
		dl.ConnectFinished(func() {
			h.finished()
		})
	})
}

func (v *view) fireClosed() {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		v.destroyed = true
		last := v.lastURL
		if v.downloadID != 0 {
			v.session.HandlerDisconnect(v.downloadID)
			v.downloadID = 0
		}
		v.mu.Unlock()
		if v.events.Closed != nil {
			v.events.Closed(last)
		}
	})
}

func (v *view) alive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.destroyed
}

func (v *view) LoadURL(url string) {
	onMainThread(func() {
		if v.alive() {
			v.wv.LoadURI(url)
		}
	})
}

func (v *view) RunScript(js string) {
	onMainThread(func() {
		if !v.alive() {
			return
		}
		cjs := C.CString(js)
		defer C.free(unsafe.Pointer(cjs))
		wv := (*C.WebKitWebView)(unsafe.Pointer(coreglib.InternObject(v.wv).Native()))
		C.webkit_web_view_evaluate_javascript(wv, (*C.gchar)(cjs), C.gssize(-1), nil, nil, nil, nil, nil)
	})
}

func (v *view) GrabFocus() {
	onMainThread(func() {
		if v.alive() {
			v.wv.GrabFocus()
		}
	})
}

func (v *view) FindText(text string, backwards bool) {
	onMainThread(func() {
		if !v.alive() {
			return
		}
		opts := webkit.FindOptionsCaseInsensitive | webkit.FindOptionsWrapAround
		if backwards {
			opts |= webkit.FindOptionsBackwards
		}
		v.wv.FindController().Search(text, uint32(opts), findMaxMatches)
	})
}

func (v *view) StopFind() {
	onMainThread(func() {
		if v.alive() {
			v.wv.FindController().SearchFinish()
		}
	})
}

func (v *view) Present() {
	onMainThread(func() {
		if v.alive() {
			v.win.Present()
		}
	})
}

func (v *view) Close() {
	onMainThread(func() {
		if v.alive() {
			v.win.Destroy()
		}
	})
}

// downloadHandle adapts a WebKitDownload. WebKit may finish the transfer as
// soon as the destination is set, so the open intent is a flag read by the
// finished handler rather than a separate call into WebKit.
type downloadHandle struct {
	dl *webkit.Download

	mu           sync.Mutex
	dest         string
	openWhenDone bool
}

func (h *downloadHandle) Destination() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dest
}

func (h *downloadHandle) SetDestination(path string) {
	h.mu.Lock()
	h.dest = path
	h.mu.Unlock()
	onMainThread(func() {
		h.dl.SetDestination(path)
	})
}

func (h *downloadHandle) StageForOpening() {
	h.mu.Lock()
	h.openWhenDone = true
	h.mu.Unlock()
}

func (h *downloadHandle) Cancel() {
	onMainThread(func() {
		h.dl.Cancel()
	})
}

// finished runs on the main thread when the transfer completes.
func (h *downloadHandle) finished() {
	h.mu.Lock()
	open := h.openWhenDone
	dest := h.dest
	h.mu.Unlock()
	if !open || dest == "" {
		return
	}
	uri, err := glib.FilenameToURI(dest, "")
	if err != nil {
		uri = "file://" + dest
	}
	gtk.ShowURI(nil, uri, 0)
}
