package downloads

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrebrowser/vitre/internal/application/port"
	"github.com/vitrebrowser/vitre/internal/domain/entity"
)

// fakeDownload implements port.DownloadHandle and records the call order, so
// tests can assert that staging happens before the destination commit.
type fakeDownload struct {
	mu          sync.Mutex
	destination string
	cancelled   bool
	calls       []string
}

func (d *fakeDownload) Destination() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destination
}

func (d *fakeDownload) SetDestination(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destination = path
	d.calls = append(d.calls, "set-destination")
}

func (d *fakeDownload) StageForOpening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "stage-for-opening")
}

func (d *fakeDownload) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
	d.calls = append(d.calls, "cancel")
}

// fakeDialogs answers dialogs synchronously from canned values.
type fakeDialogs struct {
	choice    port.DestinationChoice
	yes       bool
	questions []string
	errors    []string
}

func (f *fakeDialogs) AskYesNo(_ context.Context, question string, answer func(bool)) {
	f.questions = append(f.questions, question)
	answer(f.yes)
}

func (f *fakeDialogs) ChooseDestination(_ context.Context, _ string, choose func(port.DestinationChoice)) {
	choose(f.choice)
}

func (f *fakeDialogs) ShowError(_ context.Context, message string) {
	f.errors = append(f.errors, message)
}

func (f *fakeDialogs) FatalError(string) {}

func newTestCoordinator(t *testing.T, dialogs *fakeDialogs) (*Coordinator, string, string) {
	t.Helper()
	downloadDir := t.TempDir()
	tempDir := t.TempDir()
	return NewCoordinator(downloadDir, tempDir, dialogs), downloadDir, tempDir
}

func TestDecideDestinationSkipsPreAssigned(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &fakeDialogs{})
	dl := &fakeDownload{destination: "/elsewhere/report.pdf"}

	handled := c.DecideDestination(context.Background(), dl, "report.pdf")

	assert.False(t, handled)
	assert.Equal(t, "/elsewhere/report.pdf", dl.Destination())
}

func TestDecideDestinationPicksSuggestedNameWhenFree(t *testing.T) {
	c, downloadDir, _ := newTestCoordinator(t, &fakeDialogs{})
	dl := &fakeDownload{}

	handled := c.DecideDestination(context.Background(), dl, "report.pdf")

	require.True(t, handled)
	assert.Equal(t, filepath.Join(downloadDir, "report.pdf"), dl.Destination())
}

func TestDecideDestinationCountsUpFromOne(t *testing.T) {
	c, downloadDir, _ := newTestCoordinator(t, &fakeDialogs{})
	require.NoError(t, os.WriteFile(filepath.Join(downloadDir, "report.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(downloadDir, "report_1.pdf"), []byte("x"), 0o644))

	dl := &fakeDownload{}
	handled := c.DecideDestination(context.Background(), dl, "report.pdf")

	require.True(t, handled)
	assert.Equal(t, filepath.Join(downloadDir, "report_2.pdf"), dl.Destination())
}

func TestDecideDestinationSanitizesPathSuggestions(t *testing.T) {
	c, downloadDir, _ := newTestCoordinator(t, &fakeDialogs{})
	dl := &fakeDownload{}

	handled := c.DecideDestination(context.Background(), dl, "../../etc/passwd")

	require.True(t, handled)
	assert.Equal(t, filepath.Join(downloadDir, "passwd"), dl.Destination())
}

func TestConcurrentDecisionsNeverCollide(t *testing.T) {
	c, downloadDir, _ := newTestCoordinator(t, &fakeDialogs{})

	const workers = 8
	destinations := make([]string, workers)
	handled := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dl := &fakeDownload{}
			handled[i] = c.DecideDestination(context.Background(), dl, "report.pdf")
			destinations[i] = dl.Destination()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, dest := range destinations {
		require.True(t, handled[i], "worker %d failed to resolve a destination", i)
		assert.False(t, seen[dest], "destination %s resolved twice", dest)
		seen[dest] = true
		assert.Equal(t, downloadDir, filepath.Dir(dest))
	}
}

func TestConfirmChoiceExplicitFileCommitsWithoutPrompt(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	target := filepath.Join(t.TempDir(), "chosen.pdf")
	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: target}, dl, "report.pdf")

	assert.Empty(t, dialogs.questions)
	assert.Equal(t, target, dl.Destination())
	assert.Nil(t, c.State(dl), "negotiation should be finished")
}

func TestConfirmChoiceDirectoryJoinsSuggestedFilename(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	dir := t.TempDir()
	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: dir}, dl, "report.pdf")

	assert.Equal(t, filepath.Join(dir, "report.pdf"), dl.Destination())
}

func TestConfirmChoiceExistingFileAsksOverwrite(t *testing.T) {
	dialogs := &fakeDialogs{yes: true}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	target := filepath.Join(t.TempDir(), "chosen.pdf")
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: target}, dl, "report.pdf")

	require.Len(t, dialogs.questions, 1)
	assert.Contains(t, dialogs.questions[0], target)
	assert.Equal(t, target, dl.Destination())
	assert.False(t, dl.cancelled)
}

func TestConfirmChoiceDecliningOverwriteCancels(t *testing.T) {
	dialogs := &fakeDialogs{yes: false}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	target := filepath.Join(t.TempDir(), "chosen.pdf")
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: target}, dl, "report.pdf")

	assert.True(t, dl.cancelled)
}

func TestConfirmChoiceOwnDestinationSkipsOverwritePrompt(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, downloadDir, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	// The tentative destination physically exists (the probe reserved it),
	// but it is this download's own file: no overwrite question.
	own := filepath.Join(downloadDir, "report.pdf")
	require.FileExists(t, own)

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: own}, dl, "report.pdf")

	assert.Empty(t, dialogs.questions)
	assert.Equal(t, own, dl.Destination())
}

func TestConfirmChoiceShortcutStagesBeforeCommitting(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, _, tempDir := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationShortcut, Shortcut: port.DownloadShortcut}, dl, "report.pdf")

	assert.Equal(t, filepath.Join(tempDir, "report.pdf"), dl.Destination())
	// The renderer may finish the transfer synchronously on commit, so the
	// staging call has to come first.
	require.Len(t, dl.calls, 3)
	assert.Equal(t, "stage-for-opening", dl.calls[1])
	assert.Equal(t, "set-destination", dl.calls[2])
}

func TestConfirmChoiceInvalidEncodingReportsErrorToUser(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	target := filepath.Join(t.TempDir(), "chosen\xff.pdf")
	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: target}, dl, "report.pdf")

	assert.True(t, dl.cancelled)
	require.Len(t, dialogs.errors, 1)
	assert.Contains(t, dialogs.errors[0], "report.pdf")
	assert.Contains(t, dialogs.errors[0], "not valid UTF-8")
}

func TestConfirmChoiceCancelledPickerCancelsDownload(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationCancelled}, dl, "report.pdf")

	assert.True(t, dl.cancelled)
	assert.Nil(t, c.State(dl))
}

func TestCancelRemovesReservedPlaceholder(t *testing.T) {
	dialogs := &fakeDialogs{}
	c, downloadDir, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))
	require.FileExists(t, filepath.Join(downloadDir, "report.pdf"))

	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationCancelled}, dl, "report.pdf")

	assert.NoFileExists(t, filepath.Join(downloadDir, "report.pdf"))
}

func TestResolveOverwriteAfterConfirmationIsTerminal(t *testing.T) {
	dialogs := &fakeDialogs{yes: true}
	c, _, _ := newTestCoordinator(t, dialogs)
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	target := filepath.Join(t.TempDir(), "chosen.pdf")
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))
	c.ConfirmChoice(context.Background(), port.DestinationChoice{Kind: port.DestinationPath, Path: target}, dl, "report.pdf")
	require.Equal(t, target, dl.Destination())

	// A second resolution must not cancel a confirmed download.
	c.ResolveOverwrite(context.Background(), dl, target, false)
	assert.Equal(t, target, dl.Destination())
}

func TestTempDestinationSharesUniquenessAlgorithm(t *testing.T) {
	c, _, tempDir := newTestCoordinator(t, &fakeDialogs{})

	first, err := c.TempDestination("report.pdf")
	require.NoError(t, err)
	second, err := c.TempDestination("report.pdf")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, "report.pdf"), first)
	assert.Equal(t, filepath.Join(tempDir, "report_1.pdf"), second)
}

func TestCleanTempDownloads(t *testing.T) {
	c, _, tempDir := newTestCoordinator(t, &fakeDialogs{})
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "stale.bin"), []byte("x"), 0o644))

	require.NoError(t, c.CleanTempDownloads(context.Background()))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStateTracksNegotiation(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &fakeDialogs{})
	dl := &fakeDownload{}
	require.True(t, c.DecideDestination(context.Background(), dl, "report.pdf"))

	state := c.State(dl)
	require.NotNil(t, state)
	assert.Equal(t, entity.DownloadAwaitingDestination, state.State)
	assert.Equal(t, "report.pdf", state.SuggestedFilename)
}
