// Package format pretty-prints SQL text.
//
// The formatter works from the token and block structure alone, so it never
// fails on malformed input. Comments are not preserved. Output is stable:
// formatting already formatted text returns it unchanged.
package format

import (
	"github.com/leapstack-labs/sqlscope/pkg/document"
)

// Format formats every statement of text. Statements are joined with a
// semicolon and the input's line ending, and compound bodies are indented
// one level.
func Format(text string, opts Options) string {
	doc := document.New(text)
	p := newPrinter(opts, lineEnding(text))
	p.formatStatements(doc.Statements)
	return p.String()
}

func (p *Printer) formatStatements(statements []*document.Statement) {
	for i, stmt := range statements {
		if stmt.ClosesBody() || stmt.IsBranch() {
			p.dedent()
		}

		p.lead, p.hasLead = stmt.TypeToken()
		p.formatTokens(stmt.Blocks())

		opens := stmt.OpensBody()
		if opens {
			p.indent()
		}

		if i < len(statements)-1 {
			if !opens {
				p.write(";")
			}
			p.writeln()
			continue
		}
		if p.opts.AddSemiColon && !opens {
			p.write(";")
		}
	}
}
