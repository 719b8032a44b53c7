// Package watch waits for externally generated artifacts to appear on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kiesman99/panorama/internal/logging"
)

// DefaultSettle is how long a file must stay quiet before it counts as
// written.
const DefaultSettle = 500 * time.Millisecond

// Watcher blocks until a file exists and has stopped changing.
type Watcher struct {
	settle time.Duration
	logger *zap.Logger
}

// New creates a watcher. A non-positive settle uses DefaultSettle.
func New(settle time.Duration, logger *zap.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{settle: settle, logger: logging.OrNop(logger)}
}

// WaitFor returns once path exists and no write to it has been seen for the
// settle period, or when ctx is done.
func (w *Watcher) WaitFor(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Armed only once the file is known to exist.
	settled := time.NewTimer(w.settle)
	if !settled.Stop() {
		<-settled.C
	}
	defer settled.Stop()

	if _, err := os.Stat(path); err == nil {
		w.logger.Debug("File already present", zap.String("path", path))
		settled.Reset(w.settle)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	w.logger.Info("Waiting for file", zap.String("path", path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				w.logger.Debug("File changed", zap.String("path", path), zap.Stringer("op", event.Op))
				if !settled.Stop() {
					select {
					case <-settled.C:
					default:
					}
				}
				settled.Reset(w.settle)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				settled.Stop()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.logger.Warn("Watcher error", zap.Error(err))

		case <-settled.C:
			if _, err := os.Stat(path); err != nil {
				continue
			}
			w.logger.Info("File ready", zap.String("path", path))
			return nil
		}
	}
}
