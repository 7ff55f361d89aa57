package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/spf13/cobra"
)

// previewWidth caps the first-line preview in text tables.
const previewWidth = 60

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Split SQL text into statement groups",
		Annotations: structuredOutput,
		Long: `Split SQL text into statement groups. A group is a single statement or a
routine together with its compound body, which makes each group a unit
that can be executed on its own.

Reads standard input when no file is given.`,
		Example: `  # Show the groups of a script
  sqlscope split scripts/setup.sql

  # Emit groups as JSON for a notebook
  sqlscope split scripts/setup.sql -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, sourceArg(args))
		},
	}

	return cmd
}

func runSplit(cmd *cobra.Command, path string) error {
	cc := NewCommandContext(cmd)

	content, name, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	doc := document.New(content)
	result := output.SplitOutput{File: name, Groups: splitGroups(doc)}

	if ok, err := cc.Renderer.Structured(result); ok {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, name))
		for _, g := range result.Groups {
			r.Println()
			r.Println(output.FormatHeader(2, fmt.Sprintf("Group %d", g.Index)))
			r.Println(output.FormatKeyValue("Range", formatRange(g.Start, g.End)))
			r.Println(output.FormatKeyValue("Statements", statementTypes(g.Statements)))
			r.Println()
			r.Println(output.FormatCodeBlock("sql", g.Text))
		}
		return nil
	}

	r.Header(1, fmt.Sprintf("%s (%d groups)", name, len(result.Groups)))
	rows := make([][]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		rows = append(rows, []string{
			fmt.Sprintf("%d", g.Index),
			formatRange(g.Start, g.End),
			statementTypes(g.Statements),
			preview(g.Text),
		})
	}
	r.Table([]string{"#", "Range", "Statements", "Preview"}, rows)
	return nil
}

func splitGroups(doc *document.Document) []output.GroupInfo {
	groups := doc.StatementGroups()
	infos := make([]output.GroupInfo, 0, len(groups))
	for i, g := range groups {
		info := output.GroupInfo{
			Index: i + 1,
			Start: g.Range.Start,
			End:   g.Range.End,
			Text:  doc.Content[g.Range.Start:g.Range.End],
		}
		for _, stmt := range g.Statements {
			info.Statements = append(info.Statements, statementInfo(len(info.Statements)+1, stmt))
		}
		infos = append(infos, info)
	}
	return infos
}

func statementInfo(index int, stmt *document.Statement) output.StatementInfo {
	return output.StatementInfo{
		Index: index,
		Type:  stmt.Type.String(),
		Label: stmt.Label,
		Start: stmt.Range.Start,
		End:   stmt.Range.End,
		Text:  stmt.Text(),
	}
}

func statementTypes(stmts []output.StatementInfo) string {
	types := make([]string, len(stmts))
	for i, s := range stmts {
		types[i] = s.Type
	}
	return strings.Join(types, ", ")
}

func formatRange(start, end int) string {
	return fmt.Sprintf("%d-%d", start, end)
}

// preview returns the first line of text, shortened to previewWidth.
func preview(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimRight(line, "\r")
	if len(line) > previewWidth {
		return line[:previewWidth-3] + "..."
	}
	return line
}
