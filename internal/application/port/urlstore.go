package port

import "context"

// URLStore persists the set of currently open URLs for crash recovery.
// This is best-effort recovery data: load failures degrade to an empty set
// and save failures are logged, never propagated to window management.
type URLStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, urls []string) error
}
