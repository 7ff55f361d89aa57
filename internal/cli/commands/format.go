package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/format"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errUnformatted is returned by format --check when a file would change.
var errUnformatted = errors.New("files are not formatted")

// FormatOptions holds options for the format command.
type FormatOptions struct {
	Write bool
	Check bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Format SQL files or standard input",
		Long: `Format SQL text: one clause per line, bracketed lists expanded when they
are long or nested, compound bodies indented.

With no files the text is read from standard input and written to
standard output. Formatter settings come from the format section of
sqlscope.yaml and can be overridden with flags.`,
		Example: `  # Format a file to stdout
  sqlscope format queries/orders.sql

  # Rewrite files in place with upper-case keywords
  sqlscope format --write --keyword-case upper queries/*.sql

  # Fail when a file is not formatted
  sqlscope format --check queries/*.sql

  # Format from a pipe
  echo "select * from sample" | sqlscope format`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to each file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report files that would change and exit with an error")
	AddFormatFlags(cmd.Flags())

	return cmd
}

// AddFormatFlags registers the formatter settings as flags. Changed flags
// override the format section of the config.
func AddFormatFlags(flags *pflag.FlagSet) {
	flags.Bool("use-tabs", false, "Indent with tabs")
	flags.Int("tab-width", 0, "Spaces per indent level (0 means 4)")
	flags.String("identifier-case", "", "Identifier case: preserve, upper or lower")
	flags.String("keyword-case", "", "Keyword case: preserve, upper or lower")
	flags.Bool("add-semicolon", false, "Terminate the last statement with a semicolon")
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	cc := NewCommandContext(cmd)
	formatOpts := cc.Cfg.Format

	if len(args) == 0 {
		if opts.Write {
			return fmt.Errorf("--write needs at least one file")
		}
		content, _, err := readSource(cmd, "")
		if err != nil {
			return err
		}
		formatted := format.Format(content, formatOpts)
		if opts.Check {
			if withTrailingNewline(content, formatted) != content {
				cc.Renderer.Println(stdinName)
				return errUnformatted
			}
			return nil
		}
		cc.Renderer.Println(formatted)
		return nil
	}

	var unformatted []string
	for i, path := range args {
		content, _, err := readSource(cmd, path)
		if err != nil {
			return err
		}
		result := withTrailingNewline(content, format.Format(content, formatOpts))
		changed := result != content

		switch {
		case opts.Check:
			if changed {
				unformatted = append(unformatted, path)
			}
		case opts.Write:
			if !changed {
				cc.Logger.Debug("already formatted", "path", path)
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(result), info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			cc.Logger.Debug("formatted", "path", path)
		default:
			if len(args) > 1 {
				if i > 0 {
					cc.Renderer.Println()
				}
				cc.Renderer.Println("-- " + path)
			}
			cc.Renderer.Printf("%s", ensureNewline(result))
		}
	}

	if len(unformatted) > 0 {
		for _, path := range unformatted {
			cc.Renderer.Println(path)
		}
		return errUnformatted
	}
	return nil
}

// withTrailingNewline keeps the source's final line break, which the
// formatter drops.
func withTrailingNewline(source, formatted string) string {
	switch {
	case strings.HasSuffix(source, "\r\n"):
		return formatted + "\r\n"
	case strings.HasSuffix(source, "\n"):
		return formatted + "\n"
	default:
		return formatted
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
