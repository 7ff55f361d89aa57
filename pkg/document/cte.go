package document

import (
	"github.com/leapstack-labs/sqlscope/pkg/lexer"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

type cteDef struct {
	name token.Token
	ref  CTEReference
}

// CTEReferences returns the common table expressions of a WITH statement in
// definition order. Each subquery is parsed into its own Statement.
func (s *Statement) CTEReferences() []CTEReference {
	defs, _ := s.parseCTEs()
	out := make([]CTEReference, len(defs))
	for i, def := range defs {
		out[i] = def.ref
	}
	return out
}

// parseCTEs reads "name [(col, ...)] AS (subquery)" definitions separated by
// commas. It returns the index of the main query in Blocks().
func (s *Statement) parseCTEs() ([]cteDef, int) {
	if s.Type != With {
		return nil, 0
	}
	toks := s.tree
	i := s.first + 1
	if t, ok := token.At(toks, i); ok && t.HasValue("RECURSIVE") {
		i++
	}

	var defs []cteDef
	for {
		name, ok := token.At(toks, i)
		if !ok || !isNameToken(name) {
			break
		}
		j := i + 1

		columns := []string{}
		if cols, ok := token.At(toks, j); ok && cols.IsBlock() {
			columns = columnNames(cols.Children())
			j++
		}
		if as, ok := token.At(toks, j); !ok || !as.Is(token.Keyword, "AS") {
			break
		}
		body, ok := token.At(toks, j+1)
		if !ok || !body.IsBlock() {
			break
		}

		defs = append(defs, cteDef{
			name: name,
			ref: CTEReference{
				Name:      name.Value,
				Columns:   columns,
				Statement: NewStatement(s.content, lexer.Flatten(body.Children())),
			},
		})

		i = j + 2
		if comma, ok := token.At(toks, i); ok && comma.Type == token.Comma {
			i++
			continue
		}
		break
	}
	return defs, i
}

// splitCommas splits tokens on commas at this level. Commas inside blocks
// are not seen.
func splitCommas(tokens []token.Token) [][]token.Token {
	var (
		out  [][]token.Token
		item []token.Token
	)
	for _, t := range tokens {
		if t.Type == token.Comma {
			out = append(out, item)
			item = nil
			continue
		}
		item = append(item, t)
	}
	return append(out, item)
}

func columnNames(tokens []token.Token) []string {
	var names []string
	for _, item := range splitCommas(tokens) {
		if len(item) > 0 && isNameToken(item[0]) {
			names = append(names, item[0].Value)
		}
	}
	return names
}
