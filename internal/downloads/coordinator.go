// Package downloads negotiates file-system destinations for in-progress
// transfers: collision-free filename resolution, user confirmation, and the
// quick-accept shortcut. The coordinator owns no session state; it is
// consulted per download.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/vitrebrowser/vitre/internal/application/port"
	"github.com/vitrebrowser/vitre/internal/domain/download"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
	"github.com/vitrebrowser/vitre/internal/logging"
)

const filePerm = 0o644

// ErrPathEncoding reports a destination path that is not valid UTF-8. The
// affected download is abandoned; other downloads are unaffected.
var ErrPathEncoding = errors.New("destination path is not valid UTF-8")

// record tracks one in-flight negotiation.
type record struct {
	download *entity.Download
	// reserved is a zero-byte placeholder created by the uniqueness probe,
	// removed again if the user picks a different destination.
	reserved string
}

// Coordinator resolves download destinations.
type Coordinator struct {
	downloadDir string
	tempDir     string
	dialogs     port.DialogPresenter

	mu     sync.Mutex
	active map[port.DownloadHandle]*record
}

// NewCoordinator creates a coordinator writing user downloads to downloadDir
// and externally-opened files to tempDir.
func NewCoordinator(downloadDir, tempDir string, dialogs port.DialogPresenter) *Coordinator {
	return &Coordinator{
		downloadDir: downloadDir,
		tempDir:     tempDir,
		dialogs:     dialogs,
		active:      make(map[port.DownloadHandle]*record),
	}
}

// HandleDownloadStarted runs the whole negotiation for a new transfer:
// tentative destination, destination picker, and overwrite confirmation.
func (c *Coordinator) HandleDownloadStarted(ctx context.Context, dl port.DownloadHandle, suggestedFilename string) {
	if !c.DecideDestination(ctx, dl, suggestedFilename) {
		return
	}
	c.dialogs.ChooseDestination(ctx, suggestedFilename, func(choice port.DestinationChoice) {
		c.ConfirmChoice(ctx, choice, dl, suggestedFilename)
	})
}

// DecideDestination assigns a tentative collision-free destination in the
// download directory. Returns false when the transfer already has a
// destination (it was initiated internally, the user must not choose one) or
// when no destination could be resolved.
func (c *Coordinator) DecideDestination(ctx context.Context, dl port.DownloadHandle, suggestedFilename string) bool {
	log := logging.FromContext(ctx)

	if dl.Destination() != "" {
		return false
	}

	// Some suggested file names are actually a path, so only take the last
	// part of it.
	filename := download.SanitizeFilename(suggestedFilename)
	log.Debug().Str("suggested", suggestedFilename).Str("filename", filename).Msg("deciding download destination")

	dest, err := c.reserveUnique(c.downloadDir, filename)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("cannot resolve download destination")
		c.dialogs.ShowError(ctx, fmt.Sprintf("Cannot download %s: %v", filename, err))
		return false
	}

	c.track(dl, filename, dest)
	dl.SetDestination(dest)
	return true
}

// ConfirmChoice applies the user's destination-picker answer.
func (c *Coordinator) ConfirmChoice(ctx context.Context, choice port.DestinationChoice, dl port.DownloadHandle, suggestedFilename string) {
	log := logging.FromContext(ctx)

	switch choice.Kind {
	case port.DestinationPath:
		if err := c.confirmExplicitPath(ctx, choice.Path, dl, suggestedFilename); err != nil {
			log.Error().Err(err).Msg("download failed")
			c.dialogs.ShowError(ctx, fmt.Sprintf("Cannot download %s: %v", suggestedFilename, err))
			c.cancel(ctx, dl)
		}
	case port.DestinationShortcut:
		if choice.Shortcut != port.DownloadShortcut {
			return
		}
		dest, err := c.TempDestination(suggestedFilename)
		if err != nil {
			log.Error().Err(err).Msg("cannot resolve temp download destination")
			c.dialogs.ShowError(ctx, fmt.Sprintf("Cannot download %s: %v", suggestedFilename, err))
			c.cancel(ctx, dl)
			return
		}
		// The destination commit may finish the transfer synchronously, so
		// the open-after-download intent has to be registered first.
		dl.StageForOpening()
		c.commit(ctx, dl, dest)
	case port.DestinationCancelled:
		c.cancel(ctx, dl)
	}
}

// ResolveOverwrite applies the answer to an overwrite question.
func (c *Coordinator) ResolveOverwrite(ctx context.Context, dl port.DownloadHandle, destination string, overwrite bool) {
	if overwrite {
		c.commit(ctx, dl, destination)
	} else {
		c.cancel(ctx, dl)
	}
}

// TempDestination resolves a collision-free path in the temp download
// directory, used for content the application opens externally instead of
// rendering. Shares the counter-suffix algorithm with DecideDestination so
// the two paths never collide inside one directory.
func (c *Coordinator) TempDestination(suggestedFilename string) (string, error) {
	return c.reserveUnique(c.tempDir, download.SanitizeFilename(suggestedFilename))
}

// CleanTempDownloads empties the temp download directory; files there are
// only meaningful while the transfer that produced them is being opened.
func (c *Coordinator) CleanTempDownloads(ctx context.Context) error {
	entries, err := os.ReadDir(c.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read temp download directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(c.tempDir, entry.Name())); err != nil {
			return fmt.Errorf("remove temp download: %w", err)
		}
	}
	return nil
}

// State returns the tracked negotiation state for a transfer, or nil once it
// reached a terminal state.
func (c *Coordinator) State(dl port.DownloadHandle) *entity.Download {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec := c.active[dl]; rec != nil {
		return rec.download
	}
	return nil
}

func (c *Coordinator) confirmExplicitPath(ctx context.Context, path string, dl port.DownloadHandle, suggestedFilename string) error {
	dest := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dest = filepath.Join(path, download.SanitizeFilename(suggestedFilename))
	}
	if !utf8.ValidString(dest) {
		return fmt.Errorf("confirm destination %q: %w", dest, ErrPathEncoding)
	}

	// A destination may already have been assigned automatically, so an
	// existing file at that exact path is this download's own and needs no
	// overwrite question.
	exists := fileExists(dest) && dest != dl.Destination()
	if exists {
		c.transition(dl, entity.DownloadAwaitingConfirmation)
		question := fmt.Sprintf("Do you want to overwrite %s?", dest)
		c.dialogs.AskYesNo(ctx, question, func(yes bool) {
			c.ResolveOverwrite(ctx, dl, dest, yes)
		})
		return nil
	}

	c.commit(ctx, dl, dest)
	return nil
}

func (c *Coordinator) commit(ctx context.Context, dl port.DownloadHandle, dest string) {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	rec := c.active[dl]
	if rec == nil {
		c.mu.Unlock()
		return
	}
	if err := rec.download.Confirm(dest); err != nil {
		log.Warn().Err(err).Msg("ignoring destination for finished download")
		c.mu.Unlock()
		return
	}
	if rec.reserved != "" && rec.reserved != dest {
		c.removeReservation(ctx, rec)
	}
	delete(c.active, dl)
	c.mu.Unlock()

	dl.SetDestination(dest)
	log.Info().Str("destination", dest).Msg("download destination set")
}

func (c *Coordinator) cancel(ctx context.Context, dl port.DownloadHandle) {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	rec := c.active[dl]
	if rec == nil {
		// Unknown or already terminal; cancellation after the destination
		// commit is not supported.
		c.mu.Unlock()
		return
	}
	if err := rec.download.Cancel(); err != nil {
		log.Warn().Err(err).Msg("cancel of finished download ignored")
		c.mu.Unlock()
		return
	}
	c.removeReservation(ctx, rec)
	delete(c.active, dl)
	c.mu.Unlock()

	dl.Cancel()
	log.Info().Msg("download cancelled")
}

func (c *Coordinator) track(dl port.DownloadHandle, filename, reserved string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[dl] = &record{
		download: entity.NewDownload(filename),
		reserved: reserved,
	}
}

func (c *Coordinator) transition(dl port.DownloadHandle, state entity.DownloadState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec := c.active[dl]; rec != nil {
		_ = rec.download.Transition(state)
	}
}

// removeReservation deletes the placeholder file left by the uniqueness
// probe. Only zero-byte files are removed; the renderer may have started
// writing already. Caller holds c.mu.
func (c *Coordinator) removeReservation(ctx context.Context, rec *record) {
	if rec.reserved == "" {
		return
	}
	if info, err := os.Stat(rec.reserved); err == nil && !info.IsDir() && info.Size() == 0 {
		if err := os.Remove(rec.reserved); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("path", rec.reserved).Msg("cannot remove reserved download placeholder")
		}
	}
	rec.reserved = ""
}

// reserveUnique resolves filename against dir with the counter-suffix
// algorithm and reserves the winning name with an exclusive create, so two
// concurrent in-process downloads can never resolve to the same path.
func (c *Coordinator) reserveUnique(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	for n := 0; ; n++ {
		candidate := filepath.Join(dir, download.Candidate(filename, n))
		if !utf8.ValidString(candidate) {
			return "", fmt.Errorf("resolve destination %q: %w", candidate, ErrPathEncoding)
		}

		file, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("reserve destination %q: %w", candidate, err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("close reserved destination: %w", err)
		}
		return candidate, nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
