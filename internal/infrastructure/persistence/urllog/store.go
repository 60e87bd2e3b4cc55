// Package urllog persists the set of currently open URLs to a plain text
// file, one URL per line. The file is crash-recovery data only: reads and
// writes are best-effort and callers degrade to an empty set on failure.
package urllog

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vitrebrowser/vitre/internal/logging"
)

const filePerm = 0o644

// Store reads and writes the URL log file.
type Store struct {
	path string
}

// New creates a store backed by the given file path. The file does not need
// to exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the log. A missing file yields an empty set. Malformed lines
// are skipped, not errors: this is recovery data, losing an entry beats
// failing startup.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	log := logging.FromContext(ctx)

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open url log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close url log")
		}
	}()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !validLine(line) {
			if line != "" {
				log.Debug().Str("line", line).Msg("skipping malformed url log line")
			}
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url log: %w", err)
	}
	return urls, nil
}

// Save atomically rewrites the log with one URL per line in sorted order.
// The temp-file-plus-rename dance keeps a crash mid-write from truncating
// the previous log.
func (s *Store) Save(ctx context.Context, urls []string) error {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)

	var buf strings.Builder
	for _, u := range sorted {
		buf.WriteString(u)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".urls-*")
	if err != nil {
		return fmt.Errorf("create temp url log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(buf.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write url log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp url log: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod url log: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace url log: %w", err)
	}
	return nil
}

// validLine accepts absolute URLs only; anything else on disk is noise from
// a partial write or manual editing. Host-less schemes like file:// are
// valid: locally opened files belong to the recovered session too.
func validLine(line string) bool {
	if line == "" {
		return false
	}
	parsed, err := url.Parse(line)
	if err != nil {
		return false
	}
	return parsed.Scheme != ""
}
