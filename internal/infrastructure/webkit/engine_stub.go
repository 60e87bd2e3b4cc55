//go:build !webkit_cgo

package webkit

import (
	"context"
	"fmt"
	"os"

	"github.com/vitrebrowser/vitre/internal/application/port"
)

// Engine is the no-op placeholder for builds without WebKitGTK.
type Engine struct{}

// NewEngine always fails in non-CGO builds.
func NewEngine() (*Engine, error) {
	return nil, ErrUnavailable
}

// Run returns immediately; there is no GTK main loop to drive.
func (e *Engine) Run() {}

// Quit is a no-op.
func (e *Engine) Quit() {}

func (e *Engine) NewContext(context.Context, port.ContextOptions) (port.RendererContext, error) {
	return nil, ErrUnavailable
}

func (e *Engine) NewView(context.Context, port.RendererContext, port.WindowEvents) (port.WebView, error) {
	return nil, ErrUnavailable
}

// Dialogs is the no-op placeholder for builds without GTK.
type Dialogs struct{}

// NewDialogs returns a presenter that answers every question negatively.
func NewDialogs(*Engine) *Dialogs { return &Dialogs{} }

func (d *Dialogs) AskYesNo(_ context.Context, _ string, answer func(bool)) { answer(false) }

func (d *Dialogs) ChooseDestination(_ context.Context, _ string, choose func(port.DestinationChoice)) {
	choose(port.DestinationChoice{Kind: port.DestinationCancelled})
}

// ShowError prints to stderr; without GTK there is no dialog to show.
func (d *Dialogs) ShowError(_ context.Context, message string) {
	fmt.Fprintln(os.Stderr, message)
}

// FatalError prints to stderr; without GTK there is no dialog to show.
func (d *Dialogs) FatalError(message string) {
	fmt.Fprintln(os.Stderr, "Fatal error:", message)
}
