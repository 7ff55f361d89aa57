package document

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Statement is one unit of SQL. It owns its token slice.
type Statement struct {
	Tokens []token.Token
	Range  token.Range
	Type   StatementType
	// Label is set for statements such as "lbl: BEGIN".
	Label string

	content string
	words   []token.Token // tokens without newlines
	tree    []token.Token // words with bracket pairs collapsed
	first   int           // index of the first token after the label
}

// NewStatement builds a statement over tokens taken from content. Token
// ranges are offsets into content.
func NewStatement(content string, tokens []token.Token) *Statement {
	words := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if !isNewline(t) {
			words = append(words, t)
		}
	}

	s := &Statement{
		Tokens:  tokens,
		Range:   token.Span(tokens),
		content: content,
		words:   words,
		tree:    lexer.CreateBlocks(words),
	}

	if len(words) >= 2 && words[0].Type.IsName() && words[1].Type == token.Colon &&
		(len(words) == 2 || words[2].Range.Start > words[1].Range.End || words[2].Type == token.Keyword) {
		s.Label = words[0].Value
		s.first = 2
	}

	if first, ok := token.At(words, s.first); ok {
		s.Type = ClassifyKeyword(first.Value)
	} else if s.Label != "" {
		s.Type = Label
	}
	return s
}

// Blocks returns the statement tokens, newlines excluded, with bracket pairs
// collapsed into blocks. RefAtToken indexes into this slice.
func (s *Statement) Blocks() []token.Token {
	return s.tree
}

// TypeToken returns the token the statement type was classified from.
func (s *Statement) TypeToken() (token.Token, bool) {
	if s.Type == Unknown || s.Type == Label {
		return token.Token{}, false
	}
	return token.At(s.words, s.first)
}

// Text returns the statement's source text.
func (s *Statement) Text() string {
	if s.Range.End > len(s.content) {
		return ""
	}
	return s.content[s.Range.Start:s.Range.End]
}

// significant returns the tokens after the label.
func (s *Statement) significant() []token.Token {
	return s.words[s.first:]
}

func (s *Statement) lastToken() (token.Token, bool) {
	return token.At(s.words, len(s.words)-1)
}

// IsCompoundStart reports whether the statement is a bare BEGIN marker.
func (s *Statement) IsCompoundStart() bool {
	return s.Type == Begin
}

// IsCompoundEnd reports whether the statement is a bare END marker,
// optionally followed by a label.
func (s *Statement) IsCompoundEnd() bool {
	if s.Type != End {
		return false
	}
	toks := s.significant()
	return len(toks) == 1 || (len(toks) == 2 && !isEndKind(toks[1]))
}

// IsConditionStart reports whether the statement is the header of a
// conditional or loop body, such as "IF x THEN" or "WHILE y DO".
func (s *Statement) IsConditionStart() bool {
	last, ok := s.lastToken()
	if !ok {
		return false
	}
	switch s.Type {
	case If, Elseif:
		return last.Is(token.Keyword, "THEN")
	case While, For:
		return last.Is(token.Keyword, "DO")
	case Loop:
		return last.Is(token.Keyword, "LOOP")
	case Else, Repeat:
		return len(s.significant()) == 1
	}
	return false
}

// IsConditionEnd reports whether the statement closes a conditional or loop,
// such as "END IF" or "UNTIL x END REPEAT".
func (s *Statement) IsConditionEnd() bool {
	toks := s.significant()
	if s.Type == End {
		return len(toks) >= 2 && isEndKind(toks[1]) && !toks[1].HasValue("CASE")
	}
	n := len(toks)
	return n >= 2 && toks[0].HasValue("UNTIL") && toks[n-2].Is(token.Keyword, "END") && toks[n-1].HasValue("REPEAT")
}

// OpensBody reports whether the statements that follow belong to a body
// opened by this one.
func (s *Statement) OpensBody() bool {
	if s.IsConditionStart() {
		return true
	}
	last, ok := s.lastToken()
	if !ok {
		return false
	}
	return last.Is(token.Keyword, "BEGIN") || endsWithBeginAtomic(s.words)
}

// ClosesBody reports whether the statement ends a body.
func (s *Statement) ClosesBody() bool {
	return s.IsCompoundEnd() || s.IsConditionEnd()
}

// IsBranch reports whether the statement continues a conditional at the
// same level, as ELSE and ELSEIF do.
func (s *Statement) IsBranch() bool {
	return s.Type == Else || s.Type == Elseif
}

func endsWithBeginAtomic(tokens []token.Token) bool {
	n := len(tokens)
	if n < 2 || !tokens[n-1].HasValue("ATOMIC") {
		return false
	}
	prev := tokens[n-2]
	if prev.HasValue("NOT") && n >= 3 {
		prev = tokens[n-3]
	}
	return prev.Is(token.Keyword, "BEGIN")
}

var endKinds = []string{"IF", "LOOP", "WHILE", "FOR", "REPEAT", "CASE"}

func isEndKind(t token.Token) bool {
	return t.HasValue(endKinds...)
}

// TokensText renders tokens as source-like text. Blocks are expanded and
// any gap between tokens in the source becomes a single space.
func (s *Statement) TokensText(tokens []token.Token) string {
	return TokensText(tokens)
}

// TokensText renders tokens as source-like text. Blocks are expanded and
// any gap between tokens in the source becomes a single space.
func TokensText(tokens []token.Token) string {
	var b strings.Builder
	prevEnd := -1
	for _, t := range lexer.Flatten(tokens) {
		if t.Type == token.Newline || t.Type == token.Newliner {
			continue
		}
		if prevEnd >= 0 && t.Range.Start > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(t.Value)
		prevEnd = t.Range.End
	}
	return b.String()
}

func upper(s string) string {
	return strings.ToUpper(s)
}
