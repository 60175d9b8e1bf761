package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs a watcher on dir and returns a channel receiving one
// value per rebuild.
func startWatcher(t *testing.T, dir string, opts Options) <-chan struct{} {
	t.Helper()
	rebuilds := make(chan struct{}, 16)
	opts.Logger = quietLogger()
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}

	w, err := NewWatcher(dir, opts, func(context.Context) { rebuilds <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher ready")
	}
	return rebuilds
}

func waitRebuild(t *testing.T, rebuilds <-chan struct{}) {
	t.Helper()
	select {
	case <-rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
}

func expectNoRebuild(t *testing.T, rebuilds <-chan struct{}, wait time.Duration) {
	t.Helper()
	select {
	case <-rebuilds:
		t.Fatal("unexpected rebuild")
	case <-time.After(wait):
	}
}

func TestWatcher_PostWriteTriggersRebuild(t *testing.T) {
	dir := t.TempDir()
	rebuilds := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\ntags: go\n---\n"), 0o600))
	waitRebuild(t, rebuilds)
}

func TestWatcher_BurstCoalescesToSingleRebuild(t *testing.T) {
	dir := t.TempDir()
	rebuilds := startWatcher(t, dir, Options{Debounce: 100 * time.Millisecond})

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	waitRebuild(t, rebuilds)
	expectNoRebuild(t, rebuilds, 250*time.Millisecond)
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rebuilds := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	expectNoRebuild(t, rebuilds, 150*time.Millisecond)
}

func TestWatcher_RemovalTriggersRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.markdown")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	rebuilds := startWatcher(t, dir, Options{})

	require.NoError(t, os.Remove(path))
	waitRebuild(t, rebuilds)
}

func TestWatcher_RecursiveWatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rebuilds := startWatcher(t, dir, Options{Recursive: true})

	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.Mkdir(sub, 0o750))
	waitRebuild(t, rebuilds)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.md"), []byte("x"), 0o600))
	waitRebuild(t, rebuilds)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), Options{Logger: quietLogger()}, func(context.Context) {})
	require.NoError(t, err)
	require.Error(t, w.Run(context.Background()))
}

func TestNewWatcher_RequiresRebuild(t *testing.T) {
	_, err := NewWatcher(t.TempDir(), Options{}, nil)
	require.Error(t, err)
}

func TestScheduler(t *testing.T) {
	t.Run("returns job id for valid cron", func(t *testing.T) {
		s, err := NewScheduler(quietLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleCron("regenerate", "0 */4 * * *", func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects invalid cron", func(t *testing.T) {
		s, err := NewScheduler(quietLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleCron("regenerate", "this is not a cron", func() {})
		require.Error(t, err)
	})

	t.Run("starts and stops with a cron job", func(t *testing.T) {
		s, err := NewScheduler(quietLogger())
		require.NoError(t, err)

		_, err = s.ScheduleCron("regenerate", "*/15 * * * *", func() {})
		require.NoError(t, err)
		s.Start()
		require.NoError(t, s.Stop())
	})
}
