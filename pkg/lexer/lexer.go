// Package lexer turns SQL source text into a flat stream of typed tokens and
// regroups that stream into bracketed blocks.
//
// Tokenize never fails. Comments are dropped, strings and delimited
// identifiers run to the end of input when unterminated, and every token keeps
// the byte range it occupies in the original text.
package lexer

import (
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// delimiters are the single byte tokens that split words.
var delimiters = map[byte]token.Type{
	'(':  token.OpenBracket,
	')':  token.CloseBracket,
	'/':  token.ForwardSlash,
	'.':  token.Dot,
	'*':  token.Asterisk,
	'-':  token.Minus,
	'+':  token.Plus,
	';':  token.Semicolon,
	'&':  token.Ampersand,
	'%':  token.Percent,
	',':  token.Comma,
	'|':  token.Pipe,
	'?':  token.QuestionMark,
	':':  token.Colon,
	'=':  token.Equals,
	'<':  token.LessThan,
	'>':  token.MoreThan,
	'!':  token.Exclamation,
	'\n': token.Newline,
	'\r': token.Newliner,
}

// Lexer scans SQL input.
type Lexer struct {
	input     string
	pos       int  // current position in input
	readPos   int  // reading position (after current char)
	ch        byte // current char under examination
	wordStart int  // start of the pending word, -1 when none

	tokens []token.Token
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:     input,
		wordStart: -1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// Scan returns the raw token stream before any matcher rule is applied.
func (l *Lexer) Scan() []token.Token {
	for !l.atEnd() {
		switch {
		case l.ch == '-' && l.peekChar() == '-':
			l.commitWord()
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.commitWord()
			l.skipBlockComment()
		case l.ch == '\'':
			l.commitWord()
			l.readQuoted('\'', token.String)
		case l.ch == '"':
			l.commitWord()
			l.readQuoted('"', token.SQLName)
		case isSpace(l.ch):
			l.commitWord()
			l.readChar()
		default:
			if t, ok := delimiters[l.ch]; ok {
				l.commitWord()
				l.emit(t, l.pos, l.pos+1)
				l.readChar()
				continue
			}
			if l.wordStart < 0 {
				l.wordStart = l.pos
			}
			l.readChar()
		}
	}
	l.commitWord()
	return l.tokens
}

func (l *Lexer) emit(t token.Type, start, end int) {
	l.tokens = append(l.tokens, token.New(t, l.input[start:end], token.Range{Start: start, End: end}))
}

// commitWord emits the pending word, if any.
func (l *Lexer) commitWord() {
	if l.wordStart < 0 {
		return
	}
	start := l.wordStart
	l.wordStart = -1
	if isNumber(l.input[start:l.pos]) {
		l.emit(token.Number, start, l.pos)
		return
	}
	l.emit(token.Word, start, l.pos)
}

// skipLineComment consumes "--" up to, not including, the line terminator.
func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
}

// skipBlockComment consumes a /* ... */ comment, or the rest of the input.
func (l *Lexer) skipBlockComment() {
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readQuoted reads a literal delimited by quote. A doubled quote belongs to
// the literal. The emitted value keeps the delimiters.
func (l *Lexer) readQuoted(quote byte, t token.Type) {
	start := l.pos
	l.readChar() // skip opening quote
	for !l.atEnd() {
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		l.readChar()
	}
	l.emit(t, start, l.pos)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\f' || ch == '\v'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// Tokenize scans input, applies the matcher rules and marks function names.
func Tokenize(input string) []token.Token {
	return FindScalars(Fold(NewLexer(input).Scan(), Rules))
}
