//go:build webkit_cgo

package webkit

import (
	"context"
	"sync"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/vitrebrowser/vitre/internal/application/port"
)

// Dialogs presents questions in small GTK windows. Answers are delivered via
// callbacks from the GTK main thread; a pending question never blocks other
// windows or transfers.
type Dialogs struct {
	engine *Engine
}

// NewDialogs returns a GTK-backed dialog presenter.
func NewDialogs(engine *Engine) *Dialogs {
	return &Dialogs{engine: engine}
}

func dialogWindow(title string) (*gtk.Window, *gtk.Box) {
	win := gtk.NewWindow()
	win.SetTitle(title)
	win.SetModal(true)
	win.SetResizable(false)

	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.SetMarginTop(16)
	box.SetMarginBottom(16)
	box.SetMarginStart(16)
	box.SetMarginEnd(16)
	win.SetChild(box)
	return win, box
}

// AskYesNo shows a two-button question. The answer callback fires exactly
// once; dismissing the window counts as no.
func (d *Dialogs) AskYesNo(_ context.Context, question string, answer func(bool)) {
	onMainThread(func() {
		win, box := dialogWindow("vitre")

		label := gtk.NewLabel(question)
		label.SetWrap(true)
		box.Append(label)

		buttons := gtk.NewBox(gtk.OrientationHorizontal, 8)
		buttons.SetHAlign(gtk.AlignEnd)
		no := gtk.NewButtonWithLabel("No")
		yes := gtk.NewButtonWithLabel("Yes")
		buttons.Append(no)
		buttons.Append(yes)
		box.Append(buttons)

		var once sync.Once
		deliver := func(v bool) {
			once.Do(func() { answer(v) })
			win.Destroy()
		}
		yes.ConnectClicked(func() { deliver(true) })
		no.ConnectClicked(func() { deliver(false) })
		win.ConnectCloseRequest(func() bool {
			once.Do(func() { answer(false) })
			return false
		})

		win.Present()
	})
}

// ChooseDestination asks for a download destination. The entry is prefilled
// with the suggested filename; typing the reserved word "download" accepts
// the default destination and opens the file afterwards.
func (d *Dialogs) ChooseDestination(_ context.Context, suggestedFilename string, choose func(port.DestinationChoice)) {
	onMainThread(func() {
		win, box := dialogWindow("Save file")

		label := gtk.NewLabel("Save " + suggestedFilename + " as:")
		label.SetWrap(true)
		label.SetXAlign(0)
		box.Append(label)

		entry := gtk.NewEntry()
		entry.SetText(suggestedFilename)
		box.Append(entry)

		buttons := gtk.NewBox(gtk.OrientationHorizontal, 8)
		buttons.SetHAlign(gtk.AlignEnd)
		cancel := gtk.NewButtonWithLabel("Cancel")
		save := gtk.NewButtonWithLabel("Save")
		buttons.Append(cancel)
		buttons.Append(save)
		box.Append(buttons)

		var once sync.Once
		deliver := func(c port.DestinationChoice) {
			once.Do(func() { choose(c) })
			win.Destroy()
		}
		accept := func() {
			text := entry.Text()
			switch text {
			case "":
				deliver(port.DestinationChoice{Kind: port.DestinationCancelled})
			case port.DownloadShortcut:
				deliver(port.DestinationChoice{Kind: port.DestinationShortcut, Shortcut: text})
			default:
				deliver(port.DestinationChoice{Kind: port.DestinationPath, Path: text})
			}
		}
		save.ConnectClicked(accept)
		entry.ConnectActivate(accept)
		cancel.ConnectClicked(func() {
			deliver(port.DestinationChoice{Kind: port.DestinationCancelled})
		})
		win.ConnectCloseRequest(func() bool {
			once.Do(func() { choose(port.DestinationChoice{Kind: port.DestinationCancelled}) })
			return false
		})

		win.Present()
	})
}

// ShowError presents a non-fatal error notice without blocking anything.
func (d *Dialogs) ShowError(_ context.Context, message string) {
	onMainThread(func() {
		win, box := dialogWindow("vitre")

		label := gtk.NewLabel(message)
		label.SetWrap(true)
		box.Append(label)

		btn := gtk.NewButtonWithLabel("Close")
		btn.SetHAlign(gtk.AlignEnd)
		box.Append(btn)

		btn.ConnectClicked(func() { win.Destroy() })
		win.Present()
	})
}

// FatalError shows the message in a modal window and blocks until it is
// dismissed. Runs a nested main loop so it also works before Engine.Run.
func (d *Dialogs) FatalError(message string) {
	loop := glib.NewMainLoop(nil, false)

	onMainThread(func() {
		win, box := dialogWindow("vitre")

		label := gtk.NewLabel("Fatal error: " + message)
		label.SetWrap(true)
		box.Append(label)

		btn := gtk.NewButtonWithLabel("Close")
		btn.SetHAlign(gtk.AlignEnd)
		box.Append(btn)

		btn.ConnectClicked(func() { win.Destroy() })
		win.ConnectDestroy(func() { loop.Quit() })

		win.Present()
	})

	loop.Run()
}
