package format

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Printer renders token trees with indentation and casing.
type Printer struct {
	opts        Options
	eol         string
	unit        string
	output      *bytes.Buffer
	depth       int
	atLineStart bool

	// lead is the word the current statement was classified by.
	lead    token.Token
	hasLead bool

	upper cases.Caser
	lower cases.Caser
}

func newPrinter(opts Options, eol string) *Printer {
	return &Printer{
		opts:        opts,
		eol:         eol,
		unit:        opts.indentUnit(),
		output:      &bytes.Buffer{},
		atLineStart: true,
		upper:       cases.Upper(language.Und),
		lower:       cases.Lower(language.Und),
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return p.output.String()
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 {
		p.writeIndent()
	}
	p.output.WriteString(s)
	if len(s) > 0 {
		p.atLineStart = false
	}
}

func (p *Printer) writeln() {
	p.output.WriteString(p.eol)
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth; i++ {
		p.output.WriteString(p.unit)
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// isKeyword reports whether t takes keyword casing. Reserved words the
// matchers leave as plain words count, and so do function-like keywords
// such as VALUES (...) and EXISTS (...).
func isKeyword(t token.Token) bool {
	switch t.Type {
	case token.StatementType, token.Clause, token.Join, token.Keyword, token.ParmType:
		return true
	case token.Word, token.Function:
		return lexer.IsReserved(t.Value)
	}
	return false
}

func isIdentifier(t token.Token) bool {
	return t.Type == token.Word || t.Type == token.Function
}

// startsLine reports whether t begins a new line when it is not the first
// token of its list.
func startsLine(t token.Token) bool {
	return t.Type == token.StatementType || t.Type == token.Clause
}

func (p *Printer) applyCase(c Case, s string) string {
	switch c {
	case CaseUpper:
		return p.upper.String(s)
	case CaseLower:
		return p.lower.String(s)
	}
	return s
}

func (p *Printer) value(t token.Token) string {
	switch {
	case p.hasLead && t.Range == p.lead.Range && (t.Type == token.Word || t.Type == token.Function):
		return p.applyCase(p.opts.KeywordCase, t.Value)
	case isKeyword(t):
		return p.applyCase(p.opts.KeywordCase, t.Value)
	case isIdentifier(t):
		return p.applyCase(p.opts.IdentifierCase, t.Value)
	}
	return t.Value
}

// adjacent reports whether two tokens touch in the source.
func adjacent(cur, next token.Token) bool {
	return cur.Range.End == next.Range.Start
}

// needsSpace decides the separator between two rendered tokens. Colons and
// slashes keep their source adjacency so host variables, labels and system
// names survive, except before a token that starts a new line.
func needsSpace(cur, next token.Token) bool {
	switch next.Type {
	case token.Dot, token.Comma, token.Semicolon, token.CloseBracket:
		return false
	case token.Block:
		return !adjacent(cur, next)
	}
	switch cur.Type {
	case token.Dot, token.OpenBracket:
		return false
	}
	if startsLine(next) {
		return true
	}
	if cur.Type == token.Colon || next.Type == token.Colon ||
		cur.Type == token.ForwardSlash || next.Type == token.ForwardSlash {
		return !adjacent(cur, next)
	}
	return true
}

// formatTokens renders one token list. Statement and clause keywords after
// the first token start a new line.
func (p *Printer) formatTokens(tokens []token.Token) {
	for i, t := range tokens {
		if i > 0 && startsLine(t) {
			p.writeln()
		}
		if t.IsBlock() {
			p.formatBlock(t)
		} else {
			p.write(p.value(t))
		}
		if i+1 < len(tokens) && needsSpace(t, tokens[i+1]) {
			p.space()
		}
	}
}

// formatBlock renders a bracketed block. A single token stays inline, a
// subquery is expanded on indented lines, a list with two or more commas
// gets one item per line, and anything else stays inline.
func (p *Printer) formatBlock(b token.Token) {
	children := b.Children()

	switch {
	case len(children) > 1 && startsLine(children[0]):
		p.write("(")
		p.writeln()
		p.indent()
		p.formatTokens(children)
		p.writeln()
		p.dedent()
		p.write(")")

	case countCommas(children) >= 2:
		items := splitItems(children)
		p.write("(")
		p.writeln()
		p.indent()
		p.formatList(len(items), func(i int) { p.formatTokens(items[i]) }, ",", true)
		p.writeln()
		p.dedent()
		p.write(")")

	default:
		p.write("(")
		p.formatTokens(children)
		p.write(")")
	}
}

// formatList prints count items with sep between them. multiline adds a
// newline after each separator.
func (p *Printer) formatList(count int, format func(i int), sep string, multiline bool) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
			if multiline {
				p.writeln()
			}
		}
	}
}

func countCommas(tokens []token.Token) int {
	n := 0
	for _, t := range tokens {
		if t.Type == token.Comma {
			n++
		}
	}
	return n
}

func splitItems(tokens []token.Token) [][]token.Token {
	var (
		items [][]token.Token
		item  []token.Token
	)
	for _, t := range tokens {
		if t.Type == token.Comma {
			items = append(items, item)
			item = nil
			continue
		}
		item = append(item, t)
	}
	return append(items, item)
}

func lineEnding(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
