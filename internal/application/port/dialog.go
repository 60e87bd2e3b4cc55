package port

import "context"

// DestinationKind discriminates the outcomes of the destination picker.
type DestinationKind int

const (
	// DestinationPath means the user typed or selected an explicit path.
	DestinationPath DestinationKind = iota
	// DestinationShortcut means the user invoked a reserved shortcut,
	// bypassing the path prompt.
	DestinationShortcut
	// DestinationCancelled means the user declined the picker.
	DestinationCancelled
)

// DownloadShortcut is the reserved shortcut that accepts the default
// destination and opens the file once downloaded.
const DownloadShortcut = "download"

// DestinationChoice is the result of the destination picker.
type DestinationChoice struct {
	Kind     DestinationKind
	Path     string // set when Kind == DestinationPath
	Shortcut string // set when Kind == DestinationShortcut
}

// DialogPresenter shows user-facing dialogs. Answer delivery is
// callback-based so that one pending question never blocks other windows or
// downloads; callbacks run on the presenter's event thread.
type DialogPresenter interface {
	// AskYesNo presents a blocking-from-the-caller's-perspective yes/no
	// question and delivers the answer asynchronously.
	AskYesNo(ctx context.Context, question string, answer func(yes bool))
	// ChooseDestination asks the user for a download destination.
	ChooseDestination(ctx context.Context, suggestedFilename string, choose func(DestinationChoice))
	// ShowError presents a non-fatal error notice, used when one operation
	// (such as a download) fails without affecting the session.
	ShowError(ctx context.Context, message string)
	// FatalError shows a modal error dialog and blocks until dismissed.
	// The caller terminates the process afterwards.
	FatalError(message string)
}
