package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
	"github.com/spf13/cobra"
)

// TokensOptions holds options for the tokens command.
type TokensOptions struct {
	Blocks bool
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of SQL text",
		Annotations: structuredOutput,
		Long: `Print the tokens the lexer produces for SQL text, with their types and
byte ranges. With --blocks, bracketed groups are shown as nested blocks.

Reads standard input when no file is given.`,
		Example: `  sqlscope tokens query.sql
  echo "select count(*) from t" | sqlscope tokens --blocks`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, sourceArg(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Blocks, "blocks", false, "Nest tokens inside bracket blocks")

	return cmd
}

func runTokens(cmd *cobra.Command, path string, opts *TokensOptions) error {
	cc := NewCommandContext(cmd)

	content, _, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	toks := lexer.Tokenize(content)
	if opts.Blocks {
		toks = lexer.CreateBlocks(toks)
	}
	infos := tokenInfos(toks, 0, []output.TokenInfo{})

	if ok, err := cc.Renderer.Structured(infos); ok {
		return err
	}

	rows := make([][]string, 0, len(infos))
	for _, t := range infos {
		value := t.Value
		if t.Type != token.Block.String() {
			value = strconv.Quote(value)
		}
		rows = append(rows, []string{
			strings.Repeat("  ", t.Depth) + t.Type,
			value,
			formatRange(t.Start, t.End),
		})
	}
	cc.Renderer.Table([]string{"Type", "Value", "Range"}, rows)
	cc.Renderer.Muted(fmt.Sprintf("%d tokens", len(infos)))
	return nil
}

func tokenInfos(toks []token.Token, depth int, infos []output.TokenInfo) []output.TokenInfo {
	for _, t := range toks {
		info := output.TokenInfo{
			Type:  t.Type.String(),
			Value: t.Value,
			Start: t.Range.Start,
			End:   t.Range.End,
			Depth: depth,
		}
		if t.IsBlock() {
			info.Value = "(...)"
			infos = append(infos, info)
			infos = tokenInfos(t.Children(), depth+1, infos)
			continue
		}
		infos = append(infos, info)
	}
	return infos
}
