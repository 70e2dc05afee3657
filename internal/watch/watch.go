// Package watch notifies callers when a local résumé file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 150 * time.Millisecond

// FileWatcher watches one file. The parent directory is watched instead of
// the file itself so that atomic replace-on-save is still seen.
type FileWatcher struct {
	path     string
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	started  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher creates a watcher for path. Returns an error if the file
// does not exist.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", abs, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: debounce,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching. onChange runs once per debounced burst of writes,
// creates or renames of the file, on the watcher goroutine.
func (fw *FileWatcher) Start(ctx context.Context, onChange func(path string)) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}
	if !fw.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher for %s already started", fw.path)
	}
	go fw.loop(ctx, onChange)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. Safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		err = fw.watcher.Close()
		if fw.started.Load() {
			<-fw.doneCh
		}
	})
	return err
}

func (fw *FileWatcher) loop(ctx context.Context, onChange func(path string)) {
	defer close(fw.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			fw.fire(onChange)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] error: %v", err)
		}
	}
}

func (fw *FileWatcher) fire(onChange func(path string)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[watch] callback panic: %v", r)
		}
	}()
	onChange(fw.path)
}
