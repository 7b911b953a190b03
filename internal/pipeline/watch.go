package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/drivesight/drivesight/internal/ingest"
)

// settleWindow is how long a file must stay quiet after its last write
// before it is analyzed. Tool exports are written incrementally.
const settleWindow = 500 * time.Millisecond

// Watch analyzes drive-test files as they appear in dir, until the
// context is cancelled. Each file is debounced on its write events and
// analyzed once settled; per-file failures are logged, never fatal.
func (p *Pipeline) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipeline: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("pipeline: watch %s: %w", dir, err)
	}
	slog.Info("watching for drive-test files", "dir", dir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(settleWindow)
			return
		}
		timers[path] = time.AfterFunc(settleWindow, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			if _, err := p.RunFile(ctx, path); err != nil {
				slog.Error("watched file failed", "file", filepath.Base(path), "error", err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !supported(ev.Name) {
				continue
			}
			schedule(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// supported reports whether a registered reader handles the file.
func supported(path string) bool {
	format := ingest.DetectFormat(path)
	for _, f := range ingest.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
