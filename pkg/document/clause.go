package document

import "github.com/leapstack-labs/sqlscope/pkg/token"

// ClauseForOffset returns the clause that offset falls under. Each bracket
// level tracks its own clause so a subquery does not leak into the outer
// query.
func (s *Statement) ClauseForOffset(offset int) ClauseType {
	stack := []ClauseType{ClauseUnknown}
	for _, t := range s.words {
		if t.Range.Start >= offset {
			break
		}
		switch t.Type {
		case token.OpenBracket:
			stack = append(stack, ClauseUnknown)
		case token.CloseBracket:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case token.Clause:
			stack[len(stack)-1] = clauseKeywords[t.Upper()]
		}
	}
	return stack[len(stack)-1]
}

// BlockAt returns the smallest block whose brackets enclose offset.
func (s *Statement) BlockAt(offset int) (token.Token, bool) {
	return blockAt(s.tree, offset)
}

// BlockRangeAt returns the range of BlockAt, brackets included.
func (s *Statement) BlockRangeAt(offset int) (token.Range, bool) {
	b, ok := s.BlockAt(offset)
	if !ok {
		return token.Range{}, false
	}
	return b.Range, true
}

func blockAt(tokens []token.Token, offset int) (token.Token, bool) {
	for _, t := range tokens {
		if !t.IsBlock() || offset <= t.Range.Start || offset >= t.Range.End {
			continue
		}
		if inner, ok := blockAt(t.Children(), offset); ok {
			return inner, true
		}
		return t, true
	}
	return token.Token{}, false
}
