// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/format-engine/internal/batch"
	"github.com/pdiddy/format-engine/internal/convert"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

// syncBuffer guards the log buffer; the event loop and debounce timers
// write from separate goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type staticBackend struct {
	result string
}

func (b *staticBackend) Convert(_ context.Context, _ convert.Request) (string, error) {
	return b.result, nil
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func newTestWatcher(t *testing.T, backend convert.Backend) (*Watcher, string, string, *syncBuffer) {
	t.Helper()
	watchDir := t.TempDir()
	outDir := t.TempDir()
	log := &syncBuffer{}

	sess := session.New(types.TargetJSON)
	runner := batch.New(backend)

	w, err := New(types.WatchConfig{Dir: watchDir, Debounce: 20 * time.Millisecond},
		sess, runner, outDir, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)

	return w, watchDir, outDir, log
}

func TestWatcherConvertsDroppedFile(t *testing.T) {
	backend := &staticBackend{result: `{"ok": true}`}
	_, watchDir, outDir, _ := newTestWatcher(t, backend)

	path := filepath.Join(watchDir, "note.txt")
	if err := os.WriteFile(path, []byte("some note"), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(outDir, "note.json")
	ok := waitFor(t, 3*time.Second, func() bool {
		_, err := os.Stat(outPath)
		return err == nil
	})
	if !ok {
		t.Fatalf("converted output never appeared at %s", outPath)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"ok": true}` {
		t.Errorf("output = %q", data)
	}
}

func TestWatcherDebouncesChunkedWrites(t *testing.T) {
	backend := &staticBackend{result: "converted"}
	_, watchDir, outDir, log := newTestWatcher(t, backend)

	// Several quick writes to the same file must convert once.
	path := filepath.Join(watchDir, "slow.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.WriteString("chunk\n"); err != nil {
			t.Fatal(err)
		}
		f.Sync()
		time.Sleep(5 * time.Millisecond)
	}
	f.Close()

	outPath := filepath.Join(outDir, "slow.json")
	if !waitFor(t, 3*time.Second, func() bool {
		_, err := os.Stat(outPath)
		return err == nil
	}) {
		t.Fatalf("converted output never appeared at %s", outPath)
	}

	// Give any stray timer a moment, then count conversion lines.
	time.Sleep(100 * time.Millisecond)
	if n := strings.Count(log.String(), "converting slow.txt"); n != 1 {
		t.Errorf("file converted %d times, want 1\nlog:\n%s", n, log.String())
	}
}

func TestWatcherRejectsUnsupportedFile(t *testing.T) {
	backend := &staticBackend{result: "never used"}
	_, watchDir, _, log := newTestWatcher(t, backend)

	path := filepath.Join(watchDir, "tool.exe")
	if err := os.WriteFile(path, []byte{0x4d, 0x5a, 0x90}, 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool {
		return strings.Contains(log.String(), "rejected")
	}) {
		t.Fatalf("rejection never logged\nlog:\n%s", log.String())
	}

	// A rejected file must not stop the watcher: a good file still converts.
	good := filepath.Join(watchDir, "after.txt")
	if err := os.WriteFile(good, []byte("still fine"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool {
		return strings.Contains(log.String(), "converted: after.txt")
	}) {
		t.Fatalf("file after rejection never converted\nlog:\n%s", log.String())
	}
}
