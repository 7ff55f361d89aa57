package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/internal/index"
	"github.com/spf13/cobra"
)

// IndexOptions holds options for the index command.
type IndexOptions struct {
	Watch    bool
	Debounce time.Duration
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	opts := &IndexOptions{}

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Build the workspace symbol index",
		Annotations: structuredOutput,
		Long: `Scan a directory for .sql files and record the objects they create
(tables, views, procedures, functions and more) with their parameters in
a SQLite index. Unchanged files are skipped and files that no longer
exist are removed.

The index serves 'sqlscope refs --resolve' and workspace symbol search
in the language server. With --watch the index is kept up to date as
files change, until interrupted.`,
		Example: `  # Index the project root
  sqlscope index

  # Index a directory and keep watching it
  sqlscope index src/sql --watch

  # Use a specific index file and 4 workers
  sqlscope index --index /tmp/sql.db --workers 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Keep the index updated as files change")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", index.DefaultDebounce, "Quiet period before applying watched changes")
	cmd.Flags().String("index", "", "Path to the index database")
	cmd.Flags().Int("workers", 0, "Files parsed in parallel (0 means one per CPU)")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string, opts *IndexOptions) error {
	cc := NewCommandContext(cmd)
	ctx := commandCtx(cmd)

	dir := cc.Cfg.ProjectRoot
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	store, err := openIndex(ctx, cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ix := index.NewIndexer(store, cc.Cfg.Index.Workers, cc.Logger)

	start := time.Now()
	stats, err := ix.IndexDir(ctx, abs)
	if err != nil {
		return err
	}
	cc.Logger.Debug("index complete", "dir", abs, "duration", time.Since(start))

	result := output.IndexOutput{
		Root:    abs,
		Index:   store.Path(),
		Scanned: stats.Scanned,
		Indexed: stats.Indexed,
		Skipped: stats.Skipped,
		Removed: stats.Removed,
	}
	if err := renderIndexResult(cc.Renderer, result); err != nil {
		return err
	}

	if !opts.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cc.Renderer
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", abs))
	return ix.Watch(ctx, abs, opts.Debounce, func(ev index.WatchEvent) {
		rel, err := filepath.Rel(abs, ev.Path)
		if err != nil {
			rel = ev.Path
		}
		switch {
		case ev.Err != nil:
			r.Error(fmt.Sprintf("%s: %v", rel, ev.Err))
		case ev.Removed:
			r.Println("removed  " + rel)
		default:
			r.Println("indexed  " + rel)
		}
	})
}

func renderIndexResult(r *output.Renderer, result output.IndexOutput) error {
	if ok, err := r.Structured(result); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Index"))
		r.Println(output.FormatKeyValue("Root", result.Root))
		r.Println(output.FormatKeyValue("Index", result.Index))
		r.Println(output.FormatKeyValue("Scanned", fmt.Sprintf("%d", result.Scanned)))
		r.Println(output.FormatKeyValue("Indexed", fmt.Sprintf("%d", result.Indexed)))
		r.Println(output.FormatKeyValue("Unchanged", fmt.Sprintf("%d", result.Skipped)))
		r.Println(output.FormatKeyValue("Removed", fmt.Sprintf("%d", result.Removed)))
		return nil
	}

	r.Success(fmt.Sprintf("Indexed %d of %d files (%d unchanged, %d removed)",
		result.Indexed, result.Scanned, result.Skipped, result.Removed))
	r.Muted(fmt.Sprintf("Index: %s", result.Index))
	return nil
}
