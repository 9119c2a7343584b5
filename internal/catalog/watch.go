package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last file event before reloading
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the store whenever its catalog file changes. It blocks until ctx
// is cancelled. The parent directory is watched so that editors which replace
// the file on save are still observed.
func Watch(ctx context.Context, s *Store, debounce time.Duration) error {
	if s.path == "" {
		return fmt.Errorf("catalog store has no path to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if ctx.Err() != nil {
				return
			}
			_, _ = s.Reload()
		})
	}

	s.log.Info("watching catalog", "path", target)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("catalog watcher error", "error", err)
		}
	}
}
