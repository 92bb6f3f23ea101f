package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// ReloadDelay is how long the file must stay quiet after an event before Watch reloads it.
// A single save usually produces a truncate and one or more writes.
const ReloadDelay = 100 * time.Millisecond

// errEmptyConfig is returned by reload for a zero-length file, usually a save caught mid-write.
var errEmptyConfig = errors.New("config: file is empty")

// Watch reloads the config file once it has been written, created or renamed over and then left
// alone for ReloadDelay, and hands each successfully validated result to onChange. Invalid edits are logged and skipped, leaving the
// previous configuration in effect. The directory is watched rather than the file so editors that
// replace the file on save keep triggering reloads.
//
// Watch blocks until ctx is cancelled.
//
// Parameters:
//   - ctx: stops the watcher when cancelled
//   - path: the config file
//   - onChange: receives every valid reload, called from the watcher goroutine
//
// Returns:
//   - error: error if the watcher cannot be created, nil once ctx is done
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if onChange == nil {
		panic("config: Watch requires an onChange callback")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	log := common.Logger().With("path", abs)
	log.Debug("config watch started")

	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	var lastOp fsnotify.Op
	for {
		select {
		case <-ctx.Done():
			log.Debug("config watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			lastOp = event.Op
			timer.Reset(ReloadDelay)
		case <-timer.C:
			cfg, err := reload(abs)
			if err != nil {
				log.Warn("config reload rejected", "error", err)
				continue
			}
			log.Info("config reloaded", "op", lastOp.String())
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config watch error", "error", err)
		}
	}
}

// reload reads and decodes the file at path, refusing an empty one instead of falling back to
// the defaults.
func reload(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyConfig
	}
	return Decode(bytes.NewReader(data), filepath.Ext(path))
}
