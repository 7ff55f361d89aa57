package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchEvent reports one file handled by Watch.
type WatchEvent struct {
	Path    string
	Removed bool
	Err     error
}

// Watch keeps the index of dir up to date until ctx is cancelled. Changes
// are collected until no event has arrived for debounce, then applied;
// onEvent, when not nil, is called for every file handled.
func (ix *Indexer) Watch(ctx context.Context, dir string, debounce time.Duration, onEvent func(WatchEvent)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		pending = map[string]bool{}
		timer   *time.Timer
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	flush := func() {
		defer wg.Done()
		mu.Lock()
		paths := pending
		pending = map[string]bool{}
		mu.Unlock()

		for path := range paths {
			ev := ix.apply(ctx, path)
			if ev.Err != nil {
				ix.logger.Error("watch update failed", "path", path, "error", ev.Err)
			}
			if onEvent != nil {
				onEvent(ev)
			}
		}
	}

	queue := func(paths ...string) {
		mu.Lock()
		defer mu.Unlock()
		for _, path := range paths {
			pending[path] = true
		}
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(debounce, flush)
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if strings.HasPrefix(info.Name(), ".") {
						continue
					}
					if err := watchDirRecursive(watcher, event.Name); err != nil {
						ix.logger.Error("failed to watch directory", "dir", event.Name, "error", err)
						continue
					}
					// Files copied or moved in with the directory raise no
					// events of their own.
					files, err := collectFiles(event.Name)
					if err != nil {
						ix.logger.Error("failed to scan directory", "dir", event.Name, "error", err)
					}
					if len(files) > 0 {
						queue(files...)
					}
					continue
				}
			}
			if !IsSQLFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			queue(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ix.logger.Error("watcher error", "error", err)
		}
	}
}

// apply re-indexes path, or drops it from the index when it is gone.
func (ix *Indexer) apply(ctx context.Context, path string) WatchEvent {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return WatchEvent{Path: path, Removed: true, Err: ix.store.RemoveFile(ctx, path)}
	}
	_, err := ix.IndexFile(ctx, path)
	return WatchEvent{Path: path, Err: err}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d, dir, path) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
