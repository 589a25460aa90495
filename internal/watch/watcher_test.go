package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w, err := New(path, 50*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Changes:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Event{}
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.out")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	w := startWatcher(t, path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("more\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	ev := nextEvent(t, w)
	require.Equal(t, w.Path, ev.Path)
	require.False(t, ev.Removed)

	select {
	case extra := <-w.Changes:
		t.Fatalf("unexpected second event %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.out")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.out"), []byte("y\n"), 0o644))

	select {
	case ev := <-w.Changes:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.out")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	w := startWatcher(t, path)
	require.NoError(t, os.Remove(path))

	ev := nextEvent(t, w)
	require.True(t, ev.Removed)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.out")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	w := startWatcher(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan Event, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, func(ev Event) {
			seen <- ev
			cancel()
		})
	}()

	require.NoError(t, os.WriteFile(path, []byte("y\n"), 0o644))
	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	require.ErrorIs(t, <-errCh, context.Canceled)
}
