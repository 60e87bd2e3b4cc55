// Package bootstrap wires configuration, logging, the rendering engine, and
// the session orchestrator into a running application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vitrebrowser/vitre/internal/config"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
	"github.com/vitrebrowser/vitre/internal/downloads"
	"github.com/vitrebrowser/vitre/internal/infrastructure/persistence/urllog"
	"github.com/vitrebrowser/vitre/internal/infrastructure/webkit"
	"github.com/vitrebrowser/vitre/internal/logging"
	"github.com/vitrebrowser/vitre/internal/session"
)

// Options are the launch parameters taken from the command line.
type Options struct {
	// ConfigDir replaces all XDG base directories when set.
	ConfigDir string
	// URLs are opened one window each; empty opens a single blank window.
	URLs []string
	// Private starts the launch windows in the ephemeral context.
	Private bool
}

// Run boots the application and blocks until the session ends. The returned
// code is the process exit code.
func Run(ctx context.Context, opts Options) int {
	// The engine comes first: configuration failures are reported through a
	// dialog, and dialogs need GTK.
	engine, err := webkit.NewEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		return 1
	}
	dialogs := webkit.NewDialogs(engine)

	dirs, err := config.ResolveDirs(opts.ConfigDir)
	if err != nil {
		return fatal(dialogs, err)
	}
	manager := config.NewManager(dirs)
	if err := manager.Load(); err != nil {
		return fatal(dialogs, err)
	}
	cfg := manager.Get()

	logger := newLogger(cfg)
	ctx = logger.WithContext(ctx)

	if err := manager.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config watcher not started")
	}
	manager.OnConfigChange(func(*config.Config) {
		logger.Info().Msg("configuration reloaded")
	})

	urlLogPath, err := dirs.URLLogFile()
	if err != nil {
		return fatal(dialogs, err)
	}
	tempDir, err := dirs.TempDownloadDir()
	if err != nil {
		return fatal(dialogs, err)
	}

	store := urllog.New(urlLogPath)
	coord := downloads.NewCoordinator(cfg.Downloads.Directory, tempDir, dialogs)
	if err := coord.CleanTempDownloads(ctx); err != nil {
		logger.Warn().Err(err).Msg("cannot clean temp downloads")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls := opts.URLs
	if len(urls) == 0 && cfg.Homepage != "" {
		urls = []string{cfg.Homepage}
	}
	privacy := entity.PrivacyNormal
	if opts.Private {
		privacy = entity.PrivacyPrivate
	}

	// The session actor runs off the GTK thread; the engine's main loop owns
	// the current goroutine until the last window closes.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer engine.Quit()

		contexts, err := session.NewContextManager(gctx, engine, dirs.DataHome, dirs.CacheDir())
		if err != nil {
			return fmt.Errorf("create browsing contexts: %w", err)
		}
		orch := session.New(session.Options{
			Engine:    engine,
			Store:     store,
			Contexts:  contexts,
			Downloads: coord,
		})
		go orch.Bootstrap(urls, privacy)

		if err := orch.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	engine.Run()

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("session ended with error")
		return 1
	}
	logger.Info().Msg("session ended")
	return 0
}

func fatal(dialogs *webkit.Dialogs, err error) int {
	dialogs.FatalError(err.Error())
	return 1
}

func newLogger(cfg *config.Config) zerolog.Logger {
	lc := logging.DefaultConfig()
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && level != zerolog.NoLevel {
		lc.Level = level
	}
	lc.Format = cfg.Logging.Format
	return logging.New(lc)
}
