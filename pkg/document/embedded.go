package document

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// EmbeddedOptions controls RemoveEmbeddedAreas.
type EmbeddedOptions struct {
	// Snippets renders each marker as an editor placeholder "${n:name}"
	// instead of "?".
	Snippets bool
}

type edit struct {
	start, end  int
	replacement string
}

// RemoveEmbeddedAreas rewrites positional markers and host variables
// (":name" or ":name.qualifier") into canonical markers and counts them.
// The host variable list of SELECT ... INTO is removed without being
// counted, as is the "DECLARE c CURSOR FOR" prefix.
func (s *Statement) RemoveEmbeddedAreas(opts EmbeddedOptions) ParsedEmbeddedStatement {
	text := s.Text()
	toks := s.words
	count := 0
	marker := func(name string) string {
		count++
		if opts.Snippets {
			return fmt.Sprintf("${%d:%s}", count, name)
		}
		return "?"
	}

	var edits []edit
	start := s.first
	queryType := s.Type

	if s.Type == Declare {
		if forIdx, ok := cursorFor(toks); ok && forIdx+1 < len(toks) {
			edits = append(edits, edit{start: s.Range.Start, end: toks[forIdx+1].Range.Start})
			start = forIdx + 1
			queryType = ClassifyKeyword(toks[start].Value)
		}
	}
	isQuery := queryType == Select || queryType == With

	for i := start; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Type == token.QuestionMark:
			edits = append(edits, edit{start: t.Range.Start, end: t.Range.End, replacement: marker("?")})

		case isQuery && t.Is(token.Clause, "INTO"):
			end, ok := hostList(s.content, toks, i+1)
			if !ok {
				continue
			}
			cut := toks[end-1].Range.End
			if next, ok := token.At(toks, end); ok {
				cut = next.Range.Start
			}
			edits = append(edits, edit{start: t.Range.Start, end: cut})
			i = end - 1

		case t.Type == token.Colon:
			name, end, ok := hostVariable(s.content, toks, i)
			if !ok {
				continue
			}
			edits = append(edits, edit{start: t.Range.Start, end: toks[end-1].Range.End, replacement: marker(name)})
			i = end - 1
		}
	}

	return applyEdits(text, s.Range.Start, edits, count)
}

func applyEdits(text string, base int, edits []edit, count int) ParsedEmbeddedStatement {
	var b strings.Builder
	changed := false
	last := 0
	for _, e := range edits {
		from, to := e.start-base, e.end-base
		b.WriteString(text[last:from])
		b.WriteString(e.replacement)
		if text[from:to] != e.replacement {
			changed = true
		}
		last = to
	}
	b.WriteString(text[last:])

	return ParsedEmbeddedStatement{
		Changed:        changed,
		Content:        b.String(),
		ParameterCount: count,
	}
}

// cursorFor returns the index of FOR in "DECLARE c ... CURSOR ... FOR".
func cursorFor(toks []token.Token) (int, bool) {
	seenCursor := false
	for i, t := range toks {
		switch {
		case t.Is(token.Keyword, "CURSOR"):
			seenCursor = true
		case seenCursor && t.Is(token.Keyword, "FOR"):
			return i, true
		}
	}
	return 0, false
}

// hostVariable reads ":name" or ":name.qualifier" with the colon at i. A
// colon after a string literal is a JSON key separator, not a host variable.
func hostVariable(content string, toks []token.Token, i int) (string, int, bool) {
	colon := toks[i]
	if prev, ok := token.At(toks, i-1); ok && prev.Type == token.String {
		return "", i, false
	}
	name, ok := token.At(toks, i+1)
	if !ok || !isHostName(name) || name.Range.Start != colon.Range.End {
		return "", i, false
	}
	end := i + 2
	if dot, ok := token.At(toks, end); ok && dot.Type == token.Dot && dot.Range.Start == name.Range.End {
		if qual, ok := token.At(toks, end+1); ok && isHostName(qual) && qual.Range.Start == dot.Range.End {
			end += 2
		}
	}
	return content[name.Range.Start:toks[end-1].Range.End], end, true
}

func isHostName(t token.Token) bool {
	return t.Type == token.Word || t.Type == token.SQLName
}

// hostList reads ":a, :b, ..." at i and returns the index after it.
func hostList(content string, toks []token.Token, i int) (int, bool) {
	found := false
	for {
		colon, ok := token.At(toks, i)
		if !ok || colon.Type != token.Colon {
			return i, found
		}
		_, end, ok := hostVariable(content, toks, i)
		if !ok {
			return i, found
		}
		found = true
		i = end
		if comma, ok := token.At(toks, i); ok && comma.Type == token.Comma {
			if next, ok := token.At(toks, i+1); ok && next.Type == token.Colon {
				i++
				continue
			}
		}
		return i, found
	}
}
