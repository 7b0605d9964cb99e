// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch implements drop-directory mode: new files in a watched
// directory are admitted through the normal queue rules and converted by
// the batch runner after a debounce quiet period.
// Implements: prd003-watch (R1-R3); docs/ARCHITECTURE § Watch Mode.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/format-engine/internal/batch"
	"github.com/pdiddy/format-engine/internal/payload"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

const defaultDebounce = 2 * time.Second

// Watcher monitors one directory and feeds new files into a session and
// runner. Runs are serialized: one batch pass at a time.
type Watcher struct {
	cfg    types.WatchConfig
	sess   *session.Session
	runner *batch.Runner
	outDir string
	log    io.Writer

	fsw      *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup

	// runMu serializes batch passes triggered by debounce timers.
	runMu sync.Mutex

	// Debounce timers keyed by path, so a file being written in several
	// chunks converts once.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
}

// New creates a watcher over cfg.Dir. Results for succeeded items are
// written to outDir after each pass.
func New(cfg types.WatchConfig, sess *session.Session, runner *batch.Runner, outDir string, log io.Writer) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		sess:     sess,
		runner:   runner,
		outDir:   outDir,
		log:      log,
		fsw:      fsw,
		stopChan: make(chan struct{}),
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. It returns once the event loop is running.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.cfg.Dir, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	fmt.Fprintf(w.log, "watching %s (debounce %v)\n", w.cfg.Dir, w.cfg.Debounce)
	return nil
}

// Stop ends the event loop and waits for in-flight work to settle.
func (w *Watcher) Stop() {
	close(w.stopChan)
	w.fsw.Close()

	w.debounceMu.Lock()
	for _, t := range w.debounce {
		t.Stop()
	}
	w.debounce = map[string]*time.Timer{}
	w.debounceMu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}
			w.scheduleConvert(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.log, "watch error: %v\n", err)
		}
	}
}

// scheduleConvert (re)starts the debounce timer for a path. The file is
// only picked up once no event has arrived for the quiet period.
func (w *Watcher) scheduleConvert(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounce[path]; ok {
		t.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		w.convert(path)
	})
}

// convert admits one settled file and runs a batch pass. Rejections and
// failures are logged, never fatal: the watcher keeps going (R3.2).
func (w *Watcher) convert(path string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	p, err := payload.Read(path)
	if err != nil {
		fmt.Fprintf(w.log, "rejected %s: %v\n", path, err)
		return
	}

	if _, err := w.sess.Enqueue(p); err != nil {
		fmt.Fprintf(w.log, "rejected %s: %v\n", path, err)
		return
	}

	if _, err := w.runner.Run(context.Background(), w.sess, false, w.log); err != nil {
		fmt.Fprintf(w.log, "run failed: %v\n", err)
		return
	}

	if _, err := batch.WriteResults(w.sess, w.outDir); err != nil {
		fmt.Fprintf(w.log, "writing results: %v\n", err)
	}
}
