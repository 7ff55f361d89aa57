package document

import (
	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// CallableDetail finds the innermost call whose argument list contains
// offset. The argument list may be unclosed. Unless includeBlock is set,
// nested brackets inside the arguments are collapsed into blocks.
func (s *Statement) CallableDetail(offset int, includeBlock bool) (CallableDetail, bool) {
	toks := s.words

	var open []int
	for i, t := range toks {
		if t.Range.Start >= offset {
			break
		}
		switch t.Type {
		case token.OpenBracket:
			open = append(open, i)
		case token.CloseBracket:
			if t.Range.End <= offset && len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}

	for k := len(open) - 1; k >= 0; k-- {
		start := open[k]
		nameIdx := start - 1
		if nameIdx < 0 || !isCallableName(toks[nameIdx]) {
			continue
		}

		refStart := nameIdx
		obj := Object{Name: toks[nameIdx].Value}
		if nameIdx >= 2 && isQualifier(toks[nameIdx-1]) && isNameToken(toks[nameIdx-2]) {
			refStart = nameIdx - 2
			obj.Schema = toks[refStart].Value
		}

		end := closingBracket(toks, start)
		args := toks[start+1 : end]
		refEnd := end + 1
		if refEnd > len(toks) {
			refEnd = len(toks)
		}
		if !includeBlock {
			args = lexer.CreateBlocks(args)
		}

		return CallableDetail{
			ParentRef: ObjectRef{Tokens: toks[refStart:refEnd], Object: obj},
			Tokens:    args,
		}, true
	}
	return CallableDetail{}, false
}

func isCallableName(t token.Token) bool {
	return t.Type == token.Function || t.Type == token.SQLName
}

// closingBracket returns the index of the bracket closing the one at start,
// or len(toks) when it is never closed.
func closingBracket(toks []token.Token, start int) int {
	depth := 0
	for i := start; i < len(toks); i++ {
		switch toks[i].Type {
		case token.OpenBracket:
			depth++
		case token.CloseBracket:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks)
}

// PositionData locates offset within the argument list of detail.
// CurrentParm is zero based.
func (s *Statement) PositionData(detail CallableDetail, offset int) PositionData {
	pd := PositionData{FirstNamedParameter: NoNamedParameter}
	depth, slot := 0, 0
	for _, t := range detail.Tokens {
		switch t.Type {
		case token.OpenBracket:
			depth++
		case token.CloseBracket:
			depth--
		case token.Comma:
			if depth != 0 {
				continue
			}
			if t.Range.End <= offset {
				pd.CurrentParm++
			}
			slot++
		case token.RightPipe:
			if depth == 0 && pd.FirstNamedParameter == NoNamedParameter {
				pd.FirstNamedParameter = slot
			}
		}
	}
	pd.CurrentCount = slot + 1
	return pd
}
