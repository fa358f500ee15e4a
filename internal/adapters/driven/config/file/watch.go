package file

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ozy-max/recall/internal/keywords"
	"github.com/ozy-max/recall/internal/logger"
)

// SynonymWatcher hot-reloads the synonym table when the configuration
// file changes on disk, so the expansion data can be curated without
// restarting the engine.
type SynonymWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchSynonyms starts watching path and replaces the table contents
// on every write. The initial load is the caller's job (Load).
func WatchSynonyms(path string, table *keywords.SynonymTable) (*SynonymWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	w := &SynonymWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}

	go w.run(path, table)
	return w, nil
}

// run processes filesystem events until Close.
func (w *SynonymWatcher) run(path string, table *keywords.SynonymTable) {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.Warn("Synonym reload failed, keeping previous table: %v", err)
				continue
			}
			table.Replace(cfg.Synonyms)
			logger.Info("Synonym table reloaded: %d entries", table.Len())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *SynonymWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
