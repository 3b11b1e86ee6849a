package deck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events an editor emits on save.
const DefaultDebounce = 250 * time.Millisecond

// WatchFile calls onChange with the file's lines once at start and again after
// every change, until ctx is done. The parent directory is watched so that
// editors that save by rename are seen too.
func WatchFile(ctx context.Context, path string, debounce time.Duration, onChange func([]Line)) (err error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve deck path: %w", err)
	}

	load := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("cannot read deck file", "path", path, "error", err)
			return
		}
		onChange(Parse(string(data)))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch deck directory: %w", err)
	}

	load()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("deck file watcher error", "error", err)
		case <-pending:
			pending = nil
			load()
		}
	}
}
