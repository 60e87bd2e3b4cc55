// Package webkit adapts WebKitGTK 6.0 to the application ports. The real
// engine is only compiled with the webkit_cgo build tag; the default build
// carries stubs so the session core and its tests build without GTK.
package webkit

import "errors"

var (
	// ErrUnavailable is returned by builds without the webkit_cgo tag.
	ErrUnavailable = errors.New("webkit: engine not compiled in (build with -tags webkit_cgo)")

	// ErrViewDestroyed reports an operation on a closed view.
	ErrViewDestroyed = errors.New("webkit: view already destroyed")
)
