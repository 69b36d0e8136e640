package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"burnout-workers/internal/common/logger"
)

// Watch reloads path whenever it is written and hands the new Config to onChange.
// A reload that fails to parse or validate is logged and the previous config stays
// active. Watch returns when ctx is cancelled.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors that save atomically replace the file's inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	log.Info("Watching config for changes", map[string]interface{}{"path": path})

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFromFile(path)
			if err != nil {
				log.Error("Config reload failed, keeping previous config", map[string]interface{}{
					"path":  path,
					"error": err,
				})
				continue
			}
			log.Info("Config reloaded", map[string]interface{}{"path": path})
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Config watcher error", map[string]interface{}{"error": err})
		}
	}
}
