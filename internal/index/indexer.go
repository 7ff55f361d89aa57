package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Stats summarises an indexing run.
type Stats struct {
	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
}

// Indexer parses SQL files into a Store.
type Indexer struct {
	store   *Store
	workers int
	logger  *slog.Logger
}

// NewIndexer creates an indexer. workers bounds the number of files parsed
// at once; zero or less means one per CPU.
func NewIndexer(store *Store, workers int, logger *slog.Logger) *Indexer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{store: store, workers: workers, logger: logger}
}

// IsSQLFile reports whether path has a .sql extension, ignoring case.
func IsSQLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

func skipDir(d fs.DirEntry, root string, path string) bool {
	return path != root && strings.HasPrefix(d.Name(), ".")
}

// collectFiles returns the SQL files below dir, skipping hidden directories.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d, dir, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSQLFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// IndexDir indexes every SQL file below dir and drops indexed files under
// dir that no longer exist. Unchanged files are skipped.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (Stats, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	files, err := collectFiles(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	var indexed, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for _, path := range files {
		g.Go(func() error {
			changed, err := ix.IndexFile(gctx, path)
			if err != nil {
				return err
			}
			if changed {
				indexed.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	removed, err := ix.pruneMissing(ctx, dir, files)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Scanned: len(files),
		Indexed: int(indexed.Load()),
		Skipped: int(skipped.Load()),
		Removed: removed,
	}
	ix.logger.Info("index updated", "dir", dir, "scanned", stats.Scanned,
		"indexed", stats.Indexed, "skipped", stats.Skipped, "removed", stats.Removed)
	return stats, nil
}

// IndexFile indexes one file and reports whether the index changed. A file
// whose content hash matches the index is left alone.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	hash := Hash(content)
	prev, ok, err := ix.store.FileHash(ctx, path)
	if err != nil {
		return false, err
	}
	if ok && prev == hash {
		ix.logger.Debug("file unchanged", "path", path)
		return false, nil
	}

	entry := Extract(path, content)
	if err := ix.store.ReplaceFile(ctx, entry); err != nil {
		return false, err
	}
	ix.logger.Debug("file indexed", "path", path, "objects", len(entry.Objects))
	return true, nil
}

func (ix *Indexer) pruneMissing(ctx context.Context, dir string, present []string) (int, error) {
	seen := make(map[string]bool, len(present))
	for _, p := range present {
		seen[p] = true
	}

	indexed, err := ix.store.Files(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	prefix := dir + string(filepath.Separator)
	for _, f := range indexed {
		if !strings.HasPrefix(f.Path, prefix) || seen[f.Path] {
			continue
		}
		if err := ix.store.RemoveFile(ctx, f.Path); err != nil {
			return removed, err
		}
		ix.logger.Debug("file removed from index", "path", f.Path)
		removed++
	}
	return removed, nil
}
