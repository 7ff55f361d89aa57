// Package token defines the token model shared by the lexer, the statement
// analyser and the formatter.
//
// A Token is either a leaf (a lexical unit with a value) or a block (a
// bracket-delimited group of child tokens). The two variants are built with
// New and NewBlock; a block never carries a value and a leaf never carries
// children.
package token

import (
	"fmt"
	"strings"
)

// Type is the closed set of token tags.
//
//nolint:revive // Accept stutter as token.Type mirrors the tag name used everywhere.
type Type int32

const (
	Unknown Type = iota

	// Values
	Word
	SQLName // "delimited identifier"
	String  // 'literal'
	Number

	// Single character delimiters
	Dot
	Comma
	Semicolon
	OpenBracket
	CloseBracket
	ForwardSlash
	Asterisk
	Minus
	Plus
	Ampersand
	DoubleQuote
	Percent
	Pipe
	QuestionMark
	Colon
	Equals
	LessThan
	MoreThan
	Exclamation
	Newline
	Newliner // carriage return

	// Composites produced by the matcher rules
	Concat          // ||
	NotEqual        // <> or !=
	LessThanOrEqual // <=
	MoreThanOrEqual // >=
	RightPipe       // => (named argument)
	ParmType        // IN, OUT, INOUT
	StatementType   // CREATE, SELECT, ...
	Clause          // FROM, WHERE, ...
	Join            // JOIN, LEFT OUTER JOIN, ...
	Keyword         // AS, BEGIN, END, ...
	Function        // word followed by an open bracket

	// Block is a bracketed group produced by lexer.CreateBlocks.
	Block
)

var typeNames = map[Type]string{
	Unknown:         "unknown",
	Word:            "word",
	SQLName:         "sqlName",
	String:          "string",
	Number:          "number",
	Dot:             "dot",
	Comma:           "comma",
	Semicolon:       "semicolon",
	OpenBracket:     "openbracket",
	CloseBracket:    "closebracket",
	ForwardSlash:    "forwardslash",
	Asterisk:        "asterisk",
	Minus:           "minus",
	Plus:            "plus",
	Ampersand:       "ampersand",
	DoubleQuote:     "doublequote",
	Percent:         "percent",
	Pipe:            "pipe",
	QuestionMark:    "questionmark",
	Colon:           "colon",
	Equals:          "equals",
	LessThan:        "lessthan",
	MoreThan:        "morethan",
	Exclamation:     "exclamation",
	Newline:         "newline",
	Newliner:        "newliner",
	Concat:          "concat",
	NotEqual:        "notequal",
	LessThanOrEqual: "lessthanorequal",
	MoreThanOrEqual: "morethanorequal",
	RightPipe:       "rightpipe",
	ParmType:        "parmType",
	StatementType:   "statementType",
	Clause:          "clause",
	Join:            "join",
	Keyword:         "keyword",
	Function:        "function",
	Block:           "block",
}

// String returns the tag name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// IsName reports whether tokens of this type can name an object.
func (t Type) IsName() bool {
	return t == Word || t == SQLName || t == Function
}

// Token is a single lexical unit or a bracketed block of them.
type Token struct {
	Type  Type
	Value string
	Range Range

	children []Token
}

// New creates a leaf token. Passing Block yields an empty block.
func New(t Type, value string, r Range) Token {
	if t == Block {
		return NewBlock(r, nil)
	}
	return Token{Type: t, Value: value, Range: r}
}

// NewBlock creates a block token owning children. The range spans the
// brackets inclusive.
func NewBlock(r Range, children []Token) Token {
	if children == nil {
		children = []Token{}
	}
	return Token{Type: Block, Range: r, children: children}
}

// IsBlock reports whether the token is a block.
func (t Token) IsBlock() bool {
	return t.Type == Block
}

// Children returns the inner tokens of a block, or nil for a leaf.
func (t Token) Children() []Token {
	return t.children
}

// Upper returns the upper-cased value.
func (t Token) Upper() string {
	return strings.ToUpper(t.Value)
}

// Is reports whether the token has the given type and, when values are
// supplied, whether its value equals one of them ignoring case.
func (t Token) Is(typ Type, values ...string) bool {
	if t.Type != typ {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if strings.EqualFold(t.Value, v) {
			return true
		}
	}
	return false
}

// HasValue reports whether the value equals one of values ignoring case,
// regardless of type.
func (t Token) HasValue(values ...string) bool {
	for _, v := range values {
		if strings.EqualFold(t.Value, v) {
			return true
		}
	}
	return false
}

// String renders the token for debugging.
func (t Token) String() string {
	if t.IsBlock() {
		return fmt.Sprintf("block[%d]@%d:%d", len(t.children), t.Range.Start, t.Range.End)
	}
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Value, t.Range.Start, t.Range.End)
}

// At returns the token at index i, or false when i is out of bounds.
func At(tokens []Token, i int) (Token, bool) {
	if i < 0 || i >= len(tokens) {
		return Token{}, false
	}
	return tokens[i], true
}

// Span returns the range covering the first to the last token.
func Span(tokens []Token) Range {
	if len(tokens) == 0 {
		return Range{}
	}
	return Range{Start: tokens[0].Range.Start, End: tokens[len(tokens)-1].Range.End}
}
