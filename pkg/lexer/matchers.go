package lexer

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Step matches one token by type and, optionally, by value.
type Step struct {
	Type   token.Type
	Values []string
}

func (s Step) match(t token.Token) bool {
	return t.Is(s.Type, s.Values...)
}

// Rule collapses a fixed token sequence into one composite token.
type Rule struct {
	Name   string
	Steps  []Step
	Result token.Type
	// Adjacent requires the constituents to touch in the source, which is how
	// symbol composites such as || differ from two separate pipes.
	Adjacent bool
}

func word(values ...string) Step {
	return Step{Type: token.Word, Values: values}
}

func sym(t token.Type) Step {
	return Step{Type: t}
}

// Rules is the ordered rule list used by Tokenize. Longer join forms come
// before the shorter forms they start with.
var Rules = []Rule{
	{Name: "parmType", Steps: []Step{word(ParmTypes...)}, Result: token.ParmType},
	{Name: "outerJoin", Steps: []Step{word("LEFT", "RIGHT", "FULL"), word("OUTER"), word("JOIN")}, Result: token.Join},
	{Name: "exceptionJoin", Steps: []Step{word("LEFT", "RIGHT"), word("EXCEPTION"), word("JOIN")}, Result: token.Join},
	{Name: "sideJoin", Steps: []Step{word("LEFT", "RIGHT", "FULL", "INNER", "CROSS"), word("JOIN")}, Result: token.Join},
	{Name: "join", Steps: []Step{word("JOIN")}, Result: token.Join},
	{Name: "statementType", Steps: []Step{word(StatementKeywords...)}, Result: token.StatementType},
	{Name: "clause", Steps: []Step{word(ClauseKeywords...)}, Result: token.Clause},
	{Name: "keyword", Steps: []Step{word(BlockKeywords...)}, Result: token.Keyword},
	{Name: "newline", Steps: []Step{sym(token.Newliner), sym(token.Newline)}, Result: token.Newline, Adjacent: true},
	{Name: "concat", Steps: []Step{sym(token.Pipe), sym(token.Pipe)}, Result: token.Concat, Adjacent: true},
	{Name: "notEqual", Steps: []Step{sym(token.LessThan), sym(token.MoreThan)}, Result: token.NotEqual, Adjacent: true},
	{Name: "notEqualBang", Steps: []Step{sym(token.Exclamation), sym(token.Equals)}, Result: token.NotEqual, Adjacent: true},
	{Name: "lessThanOrEqual", Steps: []Step{sym(token.LessThan), sym(token.Equals)}, Result: token.LessThanOrEqual, Adjacent: true},
	{Name: "moreThanOrEqual", Steps: []Step{sym(token.MoreThan), sym(token.Equals)}, Result: token.MoreThanOrEqual, Adjacent: true},
	{Name: "rightPipe", Steps: []Step{sym(token.Equals), sym(token.MoreThan)}, Result: token.RightPipe, Adjacent: true},
	{Name: "decimal", Steps: []Step{sym(token.Number), sym(token.Dot), sym(token.Number)}, Result: token.Number, Adjacent: true},
}

// Match reports whether rule matches tokens starting at i.
func (r Rule) Match(tokens []token.Token, i int) bool {
	if i+len(r.Steps) > len(tokens) {
		return false
	}
	for n, step := range r.Steps {
		t := tokens[i+n]
		if !step.match(t) {
			return false
		}
		if r.Adjacent && n > 0 && tokens[i+n-1].Range.End != t.Range.Start {
			return false
		}
	}
	return true
}

// build creates the composite token for a match of r at tokens[i].
func (r Rule) build(tokens []token.Token, i int) token.Token {
	parts := tokens[i : i+len(r.Steps)]
	sep := " "
	if r.Adjacent {
		sep = ""
	}
	values := make([]string, len(parts))
	for n, t := range parts {
		values[n] = t.Value
	}
	return token.New(r.Result, strings.Join(values, sep), token.Span(parts))
}

// Fold applies rules to tokens in a single left-to-right pass. At each
// position the first matching rule wins and the scan resumes after the
// consumed tokens. The input slice is never modified.
func Fold(tokens []token.Token, rules []Rule) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		matched := false
		for _, r := range rules {
			if r.Match(tokens, i) {
				out = append(out, r.build(tokens, i))
				i += len(r.Steps)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out
}
