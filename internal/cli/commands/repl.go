package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/leapstack-labs/sqlscope/pkg/format"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	replPrompt         = "sqlscope> "
	replContinuePrompt = "     ...> "
	replHistoryFile    = "repl_history"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL analysis shell",
		Long: `Start an interactive shell. Type SQL and finish it with a semicolon (or
an empty line) to see its statements, the objects they reference, the
common table expressions they define and the formatted text.

Compound statements are collected until their body is closed.
Type .help for the shell commands.`,
		Example: `  sqlscope repl`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}

	return cmd
}

func runRepl(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)

	historyFile := ""
	if cc.Cfg.Index.Path != "" && cc.Cfg.Index.Path != ":memory:" {
		dir := filepath.Dir(cc.Cfg.Index.Path)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			historyFile = filepath.Join(dir, replHistoryFile)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session := newReplSession(cc.Renderer, cc.Cfg.Format, cc.Cfg.Naming)

	cc.Renderer.Println("sqlscope REPL")
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			session.flush()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if session.feed(line) {
			return nil
		}
		if session.pending() {
			rl.SetPrompt(replContinuePrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem(".clear"),
		readline.PcItem(".format", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".tokens", readline.PcItem("on"), readline.PcItem("off")),
	)
}

// replSession accumulates input lines and analyses complete SQL.
type replSession struct {
	r          *output.Renderer
	opts       format.Options
	naming     catalog.Naming
	buf        strings.Builder
	showFormat bool
	showTokens bool
	title      cases.Caser
}

func newReplSession(r *output.Renderer, opts format.Options, naming catalog.Naming) *replSession {
	return &replSession{
		r:          r,
		opts:       opts,
		naming:     naming,
		showFormat: true,
		title:      cases.Title(language.English),
	}
}

func (s *replSession) pending() bool {
	return s.buf.Len() > 0
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// feed handles one input line and reports whether the session should end.
func (s *replSession) feed(line string) bool {
	trimmed := strings.TrimSpace(line)

	if !s.pending() && strings.HasPrefix(trimmed, ".") {
		return s.dotCommand(trimmed)
	}

	if trimmed == "" {
		s.flush()
		return false
	}

	if s.pending() {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(line)

	if strings.HasSuffix(trimmed, ";") && openBodies(document.New(s.buf.String())) == 0 {
		s.flush()
	}
	return false
}

// flush analyses the pending input, if any.
func (s *replSession) flush() {
	if !s.pending() {
		return
	}
	text := s.buf.String()
	s.buf.Reset()
	s.analyze(text)
}

func (s *replSession) dotCommand(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		s.r.Println("Commands:")
		s.r.Println("  .help            Show this help")
		s.r.Println("  .format on|off   Show formatted SQL")
		s.r.Println("  .tokens on|off   Show the token count per statement")
		s.r.Println("  .clear           Discard pending input")
		s.r.Println("  .quit            Exit the shell")
	case ".clear":
		s.reset()
	case ".format", ".tokens":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			s.r.Error(fmt.Sprintf("usage: %s on|off", fields[0]))
			return false
		}
		on := fields[1] == "on"
		if fields[0] == ".format" {
			s.showFormat = on
		} else {
			s.showTokens = on
		}
	default:
		s.r.Error(fmt.Sprintf("unknown command %s (try .help)", fields[0]))
	}
	return false
}

func (s *replSession) analyze(text string) {
	doc := document.New(text)
	if len(doc.Statements) == 0 {
		s.r.Muted("No statements")
		return
	}

	for i, stmt := range doc.Statements {
		heading := fmt.Sprintf("%d. %s", i+1, stmt.Type)
		if stmt.Label != "" {
			heading += " (label " + stmt.Label + ")"
		}
		s.r.Header(2, heading)

		if s.showTokens {
			s.r.Muted(fmt.Sprintf("%d tokens, range %s", len(stmt.Tokens), formatRange(stmt.Range.Start, stmt.Range.End)))
		}

		for _, ref := range stmt.ObjectReferences() {
			s.r.Println("  " + s.describeRef(stmt, ref))
		}
		for _, c := range stmt.CTEReferences() {
			line := "  cte " + c.Name
			if len(c.Columns) > 0 {
				line += " (" + strings.Join(c.Columns, ", ") + ")"
			}
			s.r.Println(line)
		}
		if params := stmt.RoutineParameters(); len(params) > 0 {
			for _, p := range params {
				s.r.Println("  param " + p.Alias + " " + p.CreateType)
			}
		}
		if embedded := stmt.RemoveEmbeddedAreas(document.EmbeddedOptions{}); embedded.Changed {
			s.r.Println(fmt.Sprintf("  %d parameter markers: %s", embedded.ParameterCount, embedded.Content))
		}
	}

	if s.showFormat {
		s.r.Println()
		s.r.Println(format.Format(text, s.opts))
	}
	s.r.Println()
}

func (s *replSession) describeRef(stmt *document.Statement, ref document.ObjectRef) string {
	name := qualified(ref.Object.Schema, ref.Object.Name, s.naming)
	var b strings.Builder
	switch {
	case ref.CTE:
		b.WriteString("defines cte ")
	case ref.CreateType != "" && stmt.Type == document.Declare:
		return "declares " + name + " " + ref.CreateType
	case ref.CreateType != "":
		b.WriteString(s.title.String(stmt.Type.String()) + " " + s.title.String(ref.CreateType) + " ")
	case ref.IsUDTF:
		b.WriteString("table function ")
	default:
		b.WriteString("uses ")
	}
	b.WriteString(name)
	if ref.Alias != "" && ref.Alias != ref.Object.Name {
		b.WriteString(" as " + ref.Alias)
	}
	return b.String()
}

// openBodies counts compound bodies left open at the end of doc.
func openBodies(doc *document.Document) int {
	depth := 0
	for _, stmt := range doc.Statements {
		switch {
		case stmt.IsBranch():
		case stmt.OpensBody():
			depth++
		case stmt.ClosesBody():
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}
