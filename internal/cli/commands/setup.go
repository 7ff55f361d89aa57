// Package commands implements the sqlscope subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/internal/config"
	"github.com/leapstack-labs/sqlscope/internal/index"
	"github.com/spf13/cobra"
)

// stdinName labels input read from standard input.
const stdinName = "<stdin>"

// StructuredOutputAnnotation marks commands whose results honour --output
// json and yaml.
const StructuredOutputAnnotation = "sqlscope/structured-output"

var structuredOutput = map[string]string{StructuredOutputAnnotation: "true"}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger the
// root command stored in the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := commandCtx(cmd)
	cfg := config.GetConfig(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// commandCtx returns the command context, which is nil when a command runs
// outside Execute.
func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readSource reads a SQL file, or standard input when path is "" or "-".
func readSource(cmd *cobra.Command, path string) (content string, name string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), stdinName, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), path, nil
}

// sourceArg returns the first argument or "" for stdin.
func sourceArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// openIndex opens the workspace index named by the config, creating it when
// missing.
func openIndex(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*index.Store, error) {
	path := cfg.Index.Path
	if path == "" {
		path = config.DefaultIndexPath
	}
	store := index.NewStore(logger)
	if err := store.Open(ctx, path); err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	return store, nil
}
