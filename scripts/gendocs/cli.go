package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqlscope/internal/cli"
	"github.com/leapstack-labs/sqlscope/internal/cli/commands"
	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandDoc is what a command page shows, read from the cobra command.
type commandDoc struct {
	Name        string
	Usage       string
	Summary     string
	Description string
	Structured  bool
	Flags       []flagDoc
	Inherited   []flagDoc
	Examples    []example
}

type flagDoc struct {
	Option  string
	Type    string
	Default string
	Usage   string
}

// example is one "# comment" line and the command lines under it.
type example struct {
	Comment string
	Command string
}

// generateCLIDocs writes an index page plus one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	docs := collectCommands(root)

	if err := writeDoc(filepath.Join(outDir, "index.md"), renderCLIIndex(root, docs)); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := writeDoc(filepath.Join(outDir, doc.Name+".md"), renderCommandPage(doc)); err != nil {
			return err
		}
	}
	return nil
}

func writeDoc(path string, w *MarkdownWriter) error {
	if err := os.WriteFile(path, w.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("  Generated %s", filepath.Base(path))
	return nil
}

// collectCommands returns the documented subcommands of root in cobra's
// order.
func collectCommands(root *cobra.Command) []commandDoc {
	var docs []commandDoc
	for _, cmd := range root.Commands() {
		if !cmd.IsAvailableCommand() {
			continue
		}
		docs = append(docs, newCommandDoc(cmd))
	}
	return docs
}

func newCommandDoc(cmd *cobra.Command) commandDoc {
	description := cmd.Long
	if description == "" {
		description = cmd.Short
	}
	return commandDoc{
		Name:        cmd.Name(),
		Usage:       cmd.UseLine(),
		Summary:     cleanDescription(cmd.Short),
		Description: description,
		Structured:  cmd.Annotations[commands.StructuredOutputAnnotation] == "true",
		Flags:       flagDocs(cmd.LocalFlags()),
		Inherited:   flagDocs(cmd.InheritedFlags()),
		Examples:    parseExamples(cmd.Example),
	}
}

func flagDocs(flags *pflag.FlagSet) []flagDoc {
	var docs []flagDoc
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option = InlineCode("-"+f.Shorthand) + ", " + option
		}
		docs = append(docs, flagDoc{
			Option:  option,
			Type:    f.Value.Type(),
			Default: flagDefault(f),
			Usage:   cleanDescription(f.Usage),
		})
	})
	return docs
}

// flagDefault renders a default worth showing, or "-".
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "[]", "0", "false":
		return "-"
	}
	return InlineCode(f.DefValue)
}

// parseExamples splits cobra example text into commented commands.
func parseExamples(text string) []example {
	var (
		out []example
		cur example
	)
	emit := func() {
		if cur.Command != "" {
			out = append(out, cur)
		}
		cur = example{}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			emit()
		case strings.HasPrefix(line, "#"):
			emit()
			cur.Comment = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		case cur.Command == "":
			cur.Command = line
		default:
			cur.Command += "\n" + line
		}
	}
	emit()
	return out
}

// envVarName is the environment variable that overrides a config key.
func envVarName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func renderCLIIndex(root *cobra.Command, docs []commandDoc) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line reference for sqlscope")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/sqlscope/cmd/sqlscope@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, doc := range docs {
		formats := "text, markdown"
		if doc.Structured {
			formats = "text, markdown, json, yaml"
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(doc.Name), doc.Name),
			doc.Summary,
			formats,
		})
	}
	w.Table([]string{"Command", "Description", "Output"}, rows)

	w.Header(2, "Global Options")
	writeFlagTable(w, flagDocs(root.PersistentFlags()))

	w.Header(2, "Output Modes")
	w.Paragraph(fmt.Sprintf("Select a mode with %s or the %s config key.", InlineCode("--output"), InlineCode("output")))
	var modeRows [][]string
	for _, m := range output.Modes() {
		modeRows = append(modeRows, []string{InlineCode(string(m)), m.Description()})
	}
	w.Table([]string{"Mode", "Renders"}, modeRows)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every configuration key can be overridden by an environment variable prefixed with %s. "+
		"List values are comma separated.", InlineCode(config.EnvPrefix)))
	var envRows [][]string
	for _, f := range getConfigSchema() {
		envRows = append(envRows, []string{InlineCode(envVarName(f.Name)), InlineCode(f.Name), f.Description})
	}
	w.Table([]string{"Variable", "Config key", "Description"}, envRows)
	w.Paragraph("Flags override environment variables, which override the config file.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), fmt.Sprintf("Error, or %s found files that would change", InlineCode("format --check"))},
	})
	return w
}

func renderCommandPage(doc commandDoc) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(doc.Name, doc.Summary)
	w.GeneratedMarker()

	w.Header(1, "sqlscope "+doc.Name)
	w.Paragraph(doc.Description)

	w.Header(2, "Usage")
	w.CodeBlock("bash", doc.Usage)

	if len(doc.Flags) > 0 {
		w.Header(2, "Options")
		writeFlagTable(w, doc.Flags)
	}

	if doc.Structured {
		w.Header(2, "Output")
		modes := make([]string, 0, len(output.Modes()))
		for _, m := range output.Modes() {
			modes = append(modes, InlineCode(string(m)))
		}
		w.Paragraph(fmt.Sprintf("Supports every output mode (%s). JSON and YAML emit the same records the text tables show.",
			strings.Join(modes, ", ")))
	}

	if len(doc.Examples) > 0 {
		w.Header(2, "Examples")
		for _, ex := range doc.Examples {
			if ex.Comment != "" {
				w.Paragraph(ex.Comment + ":")
			}
			w.CodeBlock("bash", ex.Command)
		}
	}

	if len(doc.Inherited) > 0 {
		w.Header(2, "Global Options")
		writeFlagTable(w, doc.Inherited)
	}
	return w
}

func writeFlagTable(w *MarkdownWriter, flags []flagDoc) {
	rows := make([][]string, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, []string{f.Option, f.Type, f.Default, f.Usage})
	}
	w.Table([]string{"Option", "Type", "Default", "Description"}, rows)
}
