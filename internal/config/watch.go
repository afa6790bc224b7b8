package config

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file for changes and calls onChange with
// the newly loaded Config each time the file is written. It runs
// until ctx is cancelled. A failed reload keeps the previous config
// active; onChange is not called.
//
// The watch covers the data dir rather than the file itself so that
// a config file created after startup is still picked up, and so
// atomic editor saves (write temp + rename) are seen.
func Watch(
	ctx context.Context, cfg Config, onChange func(Config),
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.DataDir); err != nil {
		return err
	}

	path := cfg.ConfigPath()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := cfg.reload()
			if err != nil {
				log.Printf(
					"config: reload failed, keeping previous: %v", err,
				)
				continue
			}
			log.Printf("config: reloaded %s", path)
			onChange(next)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}
