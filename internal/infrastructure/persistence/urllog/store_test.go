package urllog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "urls"))
}

func TestLoadMissingFileYieldsEmptySet(t *testing.T) {
	store := newTestStore(t)
	urls, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := []string{"https://example.com/b", "file:///home/user/notes.html", "https://example.com/a", "http://other.net"}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	// Stored in sorted order; host-less file URLs survive the round trip.
	assert.Equal(t, []string{"file:///home/user/notes.html", "http://other.net", "https://example.com/a", "https://example.com/b"}, out)

	// Saving what was loaded reproduces the same file.
	require.NoError(t, store.Save(ctx, out))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSaveWritesOneURLPerLineWithTrailingNewline(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), []string{"https://example.com"}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com\n", string(data))
}

func TestSaveEmptySetTruncatesFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []string{"https://example.com"}))
	require.NoError(t, store.Save(ctx, nil))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Empty(t, string(data))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	store := newTestStore(t)
	content := "https://example.com/a\n" +
		"not a url\n" +
		"\n" +
		"relative/path\n" +
		"file:///home/user/notes.html\n" +
		"https://example.com/b\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	urls, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "file:///home/user/notes.html", "https://example.com/b"}, urls)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []string{"https://old.example"}))
	require.NoError(t, store.Save(ctx, []string{"https://new.example"}))

	urls, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://new.example"}, urls)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
