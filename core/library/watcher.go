package library

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"TuneFM/logger"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay batches the burst of filesystem events a single file copy
// produces into one sync.
const debounceDelay = 500 * time.Millisecond

// Watcher watches the songs directory and syncs the catalog when MP3 files
// appear. onIngest is invoked after every sync that added songs.
type Watcher struct {
	scanner  *Scanner
	onIngest func(added int)
}

// NewWatcher creates a watcher around the scanner. onIngest may be nil.
func NewWatcher(scanner *Scanner, onIngest func(added int)) *Watcher {
	return &Watcher{scanner: scanner, onIngest: onIngest}
}

// Run watches until ctx is cancelled. Watch setup failure is returned;
// runtime errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.scanner.songsDir); err != nil {
		return err
	}
	logger.Info("watching songs directory", logger.String("dir", w.scanner.songsDir))

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".mp3" {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceDelay)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			added, err := w.scanner.Sync(ctx)
			if err != nil {
				logger.Warn("library sync after filesystem event failed", logger.ErrorField(err))
				continue
			}
			if added > 0 && w.onIngest != nil {
				w.onIngest(added)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("filesystem watcher error", logger.ErrorField(err))
		}
	}
}
