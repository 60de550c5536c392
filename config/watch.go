package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Update is one reload of a watched config file. Err is set when the new
// contents failed to load; Config is then the zero value.
type Update struct {
	Config Config
	Err    error
}

// Watch reloads the config at path whenever it is written or replaced and
// sends the result on the returned channel. The channel is closed when ctx
// is cancelled or the watcher fails.
//
// A typical consumer applies new pricing to a running tracker:
//
//	updates, err := config.Watch(ctx, path)
//	for u := range updates {
//	    if u.Err == nil {
//	        u.Config.Apply(tracker)
//	    }
//	}
func Watch(ctx context.Context, path string) (<-chan Update, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ch := make(chan Update, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		watchLoop(ctx, path, watcher, ch)
	}()
	return ch, nil
}

func watchLoop(ctx context.Context, path string, watcher *fsnotify.Watcher, ch chan<- Update) {
	logger := slog.Default().With("component", "config")
	baseName := filepath.Base(path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed", "path", path, "error", err)
			} else {
				logger.Info("config reloaded", "path", path)
			}
			select {
			case ch <- Update{Config: cfg, Err: err}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
