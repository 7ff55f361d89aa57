// Package document segments SQL text into statements and statement groups and
// answers structural queries over them: object references, common table
// expressions, routine parameters, clause and call positions, and embedded
// parameter markers.
//
// Parsing is total. Malformed input yields fewer or Unknown-typed statements
// rather than an error, and every lookup reports "not found" with a false
// second return value.
package document

import (
	"sort"

	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Document is the parsed form of one SQL source text. It is immutable once
// built.
type Document struct {
	Content    string
	Statements []*Statement

	groups []StatementGroup
}

// New parses content into statements.
func New(content string) *Document {
	d := &Document{Content: content}
	d.Statements = segment(content, lexer.Tokenize(content))
	d.groups = groupStatements(d.Statements)
	return d
}

// segmenter accumulates tokens into statements.
type segmenter struct {
	content    string
	current    []token.Token
	statements []*Statement
}

func (g *segmenter) flush() {
	toks := trimNewlines(g.current)
	g.current = nil
	if len(toks) == 0 {
		return
	}
	out := make([]token.Token, len(toks))
	copy(out, toks)
	g.statements = append(g.statements, NewStatement(g.content, out))
}

// currentType classifies the pending tokens the way NewStatement would.
func (g *segmenter) currentType() (StatementType, int) {
	toks := trimNewlines(g.current)
	first := 0
	if len(toks) >= 2 && toks[0].Type.IsName() && toks[1].Type == token.Colon {
		first = 2
	}
	t, ok := token.At(toks, first)
	if !ok {
		return Unknown, 0
	}
	return ClassifyKeyword(t.Value), len(toks) - first
}

func segment(content string, tokens []token.Token) []*Statement {
	g := &segmenter{content: content}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]

		if t.Type == token.Semicolon {
			g.flush()
			continue
		}

		if g.endsEndMarker(t) {
			g.flush()
		}

		g.current = append(g.current, t)
		if t.Type != token.Keyword {
			continue
		}

		typ, n := g.currentType()
		switch t.Upper() {
		case "BEGIN":
			// BEGIN [NOT] ATOMIC stays with its header.
			if next, ok := token.At(tokens, i+1); ok && next.HasValue("NOT") {
				if after, ok := token.At(tokens, i+2); ok && after.HasValue("ATOMIC") {
					g.current = append(g.current, next, after)
					i += 2
				}
			} else if ok && next.HasValue("ATOMIC") {
				g.current = append(g.current, next)
				i++
			}
			g.flush()
		case "THEN":
			if typ == If || typ == Elseif {
				g.flush()
			}
		case "DO":
			if typ == While || typ == For {
				g.flush()
			}
		case "LOOP":
			if typ == Loop {
				g.flush()
			}
		case "ELSE", "REPEAT":
			if n == 1 && (typ == Else || typ == Repeat) {
				g.flush()
			}
		}
	}
	g.flush()

	return g.statements
}

// endsEndMarker reports whether the pending tokens are a complete END marker
// (END [kind] [label]) that next, a new statement keyword, follows without a
// terminator.
func (g *segmenter) endsEndMarker(next token.Token) bool {
	toks := trimNewlines(g.current)
	if len(toks) == 0 || !toks[0].Is(token.Keyword, "END") || len(toks) > 3 {
		return false
	}
	if !startsStatement(next) {
		return false
	}
	switch len(toks) {
	case 1:
		return !isEndKind(next)
	case 2:
		return isEndKind(toks[1]) || toks[1].Type == token.Word
	default:
		return isEndKind(toks[1]) && toks[2].Type.IsName()
	}
}

func startsStatement(t token.Token) bool {
	switch t.Type {
	case token.StatementType:
		return true
	case token.Word, token.Keyword:
		return ClassifyKeyword(t.Value) != Unknown && !t.HasValue("END")
	}
	return false
}

func trimNewlines(tokens []token.Token) []token.Token {
	start, end := 0, len(tokens)
	for start < end && isNewline(tokens[start]) {
		start++
	}
	for end > start && isNewline(tokens[end-1]) {
		end--
	}
	return tokens[start:end]
}

func isNewline(t token.Token) bool {
	return t.Type == token.Newline || t.Type == token.Newliner
}

// StatementByOffset returns the statement an offset falls in. Each statement
// also owns the gap up to the next statement, and the last statement accepts
// any trailing offset.
func (d *Document) StatementByOffset(offset int) (*Statement, bool) {
	i := sort.Search(len(d.Statements), func(i int) bool {
		return d.Statements[i].Range.Start > offset
	}) - 1
	if i < 0 {
		return nil, false
	}
	return d.Statements[i], true
}

// TokenByOffset returns the innermost token at offset in its statement. A
// token that ends exactly at offset counts, so a cursor placed right after a
// word finds that word.
func (d *Document) TokenByOffset(offset int) (token.Token, bool) {
	stmt, ok := d.StatementByOffset(offset)
	if !ok {
		return token.Token{}, false
	}
	return tokenAt(stmt.Blocks(), offset)
}

func tokenAt(tokens []token.Token, offset int) (token.Token, bool) {
	var touching *token.Token
	for i := range tokens {
		t := tokens[i]
		if t.Range.Contains(offset) {
			if t.IsBlock() {
				if inner, ok := tokenAt(t.Children(), offset); ok {
					return inner, true
				}
			}
			return t, true
		}
		if t.Range.End == offset {
			touching = &tokens[i]
		}
	}
	if touching != nil {
		return *touching, true
	}
	return token.Token{}, false
}

// RemoveEmbeddedAreas rewrites the embedded parameter areas of stmt.
func (d *Document) RemoveEmbeddedAreas(stmt *Statement, opts EmbeddedOptions) ParsedEmbeddedStatement {
	return stmt.RemoveEmbeddedAreas(opts)
}
