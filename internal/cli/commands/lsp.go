package commands

import (
	"github.com/leapstack-labs/sqlscope/internal/config"
	"github.com/leapstack-labs/sqlscope/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It provides
document formatting, document symbols, folding ranges and workspace
symbols. The project root, its sqlscope.yaml and the workspace index
are determined by the client's initialization request (rootUri).`,
		Example: `  # Start LSP server (usually called by an editor)
  sqlscope lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	ctx := commandCtx(cmd)
	logger := config.GetLogger(ctx)
	server := lsp.NewServerWithLogger(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	server.SetVersion(version)
	return server.Run(ctx)
}
