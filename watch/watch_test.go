package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/testutil"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// collector records every batch handed to it.
type collector struct {
	mu     sync.Mutex
	events []resource.ChangeEvent
}

func (c *collector) handle(_ context.Context, events []resource.ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
	return nil
}

func (c *collector) has(e resource.ChangeEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.events {
		if got == e {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, root string, handle Handler) {
	t.Helper()

	w, err := New([]string{root}, WithQuietPeriod(50*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, []string{root}, w.Roots())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, handle) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, w.Close())
	})
}

func TestWatcherReportsFileChanges(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"drawable/icon.png": "icon",
		"values/values.xml": testutil.Values(`<string name="a">A</string>`),
	})
	c := &collector{}
	startWatcher(t, root, c.handle)

	created := filepath.Join(root, "drawable", "logo.png")
	testutil.WriteFile(t, created, "logo")
	testutil.RemoveFile(t, filepath.Join(root, "drawable", "icon.png"))

	require.Eventually(t, func() bool {
		return c.has(resource.ChangeEvent{Root: root, Path: created, Status: resource.StatusNew}) &&
			c.has(resource.ChangeEvent{Root: root, Path: filepath.Join(root, "drawable", "icon.png"), Status: resource.StatusRemoved})
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherPicksUpNewFolders(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"drawable/icon.png": "icon"})
	c := &collector{}
	startWatcher(t, root, c.handle)

	created := filepath.Join(root, "raw", "data.bin")
	testutil.WriteFile(t, created, "data")

	require.Eventually(t, func() bool {
		return c.has(resource.ChangeEvent{Root: root, Path: created, Status: resource.StatusNew})
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"drawable/icon.png": "icon"})
	c := &collector{}
	startWatcher(t, root, c.handle)

	hidden := filepath.Join(root, "drawable", ".icon.png.swp")
	visible := filepath.Join(root, "drawable", "visible.png")
	testutil.WriteFile(t, hidden, "swap")
	testutil.WriteFile(t, visible, "visible")

	require.Eventually(t, func() bool {
		return c.has(resource.ChangeEvent{Root: root, Path: visible, Status: resource.StatusNew})
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, c.has(resource.ChangeEvent{Root: root, Path: hidden, Status: resource.StatusNew}))
}

func TestWatcherStopsOnHandlerError(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"drawable/icon.png": "icon"})
	w, err := New([]string{root}, WithQuietPeriod(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(context.Context, []resource.ChangeEvent) error { return boom })
	}()

	// the watch may not be live the instant Run starts; keep touching the tree
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case err := <-done:
			assert.ErrorIs(t, err, boom)
			return
		case <-ticker.C:
			testutil.WriteFile(t, filepath.Join(root, "drawable", "icon.png"), "icon"+string(rune('a'+i%26)))
		case <-deadline:
			t.Fatal("handler error did not stop the watcher")
		}
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, reserrors.ErrConfig))

	_, err = New([]string{t.TempDir()}, WithQuietPeriod(0))
	assert.True(t, errors.Is(err, reserrors.ErrConfig))
}

func TestNewSkipsMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	w, err := New([]string{missing})
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, w.Roots())
	assert.NoError(t, w.Close())
}
