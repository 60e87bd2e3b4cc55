// Package config resolves the application's XDG directories and loads the
// settings file. It is the process's config store: everything else asks this
// package for paths and settings instead of touching the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName = "vitre"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Dirs holds the resolved base directories for the application.
type Dirs struct {
	ConfigHome string
	DataHome   string
	StateHome  string
}

// ResolveDirs returns the application directories following the XDG Base
// Directory specification. A non-empty override root replaces all three
// bases (used by the --config-dir launch flag).
func ResolveDirs(override string) (*Dirs, error) {
	if override != "" {
		root := filepath.Join(override, appName)
		return &Dirs{
			ConfigHome: root,
			DataHome:   root,
			StateHome:  root,
		}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}

	return &Dirs{
		ConfigHome: filepath.Join(configHome, appName),
		DataHome:   filepath.Join(dataHome, appName),
		StateHome:  filepath.Join(stateHome, appName),
	}, nil
}

// EnsureDirectories creates the base directories. Failure here is the one
// fatal startup condition: without the directory tree there is no session to
// recover into.
func (d *Dirs) EnsureDirectories() error {
	for _, dir := range []string{d.ConfigHome, d.DataHome, d.StateHome} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DataFile returns the path of a file under the data directory, creating
// parent directories as needed.
func (d *Dirs) DataFile(name string) (string, error) {
	path := filepath.Join(d.DataHome, name)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("create data directory for %s: %w", name, err)
	}
	return path, nil
}

// URLLogFile returns the path of the crash-recovery URL log.
func (d *Dirs) URLLogFile() (string, error) {
	return d.DataFile("urls")
}

// TempDownloadDir returns the directory used for downloads the application
// opens externally instead of rendering.
func (d *Dirs) TempDownloadDir() (string, error) {
	dir := filepath.Join(d.DataHome, "downloads")
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create temp download directory: %w", err)
	}
	return dir, nil
}

// ConfigFile returns the path of the main configuration file.
func (d *Dirs) ConfigFile() string {
	return filepath.Join(d.ConfigHome, "config.toml")
}

// CacheDir returns the directory for regenerable renderer state.
func (d *Dirs) CacheDir() string {
	return filepath.Join(d.StateHome, "cache")
}
