package lexer

import "github.com/leapstack-labs/sqlscope/pkg/token"

// FindScalars retypes every word directly followed by an open bracket as a
// function name.
func FindScalars(tokens []token.Token) []token.Token {
	out := make([]token.Token, len(tokens))
	for i, t := range tokens {
		if t.Type == token.Word && i+1 < len(tokens) && tokens[i+1].Type == token.OpenBracket {
			t = token.New(token.Function, t.Value, t.Range)
		}
		out[i] = t
	}
	return out
}

// CreateBlocks collapses each balanced bracket pair into a block token whose
// children are themselves block-ified. An open bracket without a matching
// close bracket is kept as a plain token, as is a stray close bracket.
func CreateBlocks(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.Type != token.OpenBracket {
			out = append(out, t)
			continue
		}
		end := matchingBracket(tokens, i)
		if end < 0 {
			out = append(out, t)
			continue
		}
		children := CreateBlocks(tokens[i+1 : end])
		out = append(out, token.NewBlock(token.Range{Start: t.Range.Start, End: tokens[end].Range.End}, children))
		i = end
	}
	return out
}

// matchingBracket returns the index of the close bracket balancing the open
// bracket at start, or -1.
func matchingBracket(tokens []token.Token, start int) int {
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.OpenBracket:
			depth++
		case token.CloseBracket:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Flatten reverses CreateBlocks, emitting the brackets around each block's
// children.
func Flatten(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsBlock() {
			out = append(out, t)
			continue
		}
		out = append(out, token.New(token.OpenBracket, "(", token.Range{Start: t.Range.Start, End: t.Range.Start + 1}))
		out = append(out, Flatten(t.Children())...)
		out = append(out, token.New(token.CloseBracket, ")", token.Range{Start: t.Range.End - 1, End: t.Range.End}))
	}
	return out
}
