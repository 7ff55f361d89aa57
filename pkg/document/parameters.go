package document

import (
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// constraintWords start a table element that is not a column.
var constraintWords = []string{"PRIMARY", "CONSTRAINT", "FOREIGN", "UNIQUE", "CHECK", "PERIOD", "LIKE"}

// RoutineParameters returns the parameters of a CREATE PROCEDURE or FUNCTION,
// or the columns of a CREATE TABLE. Alias holds the name and CreateType the
// rest of the item verbatim, mode included.
func (s *Statement) RoutineParameters() []ObjectRef {
	if s.Type != Create {
		return nil
	}
	_, next, ok := s.definition()
	if !ok {
		return nil
	}
	list, ok := token.At(s.tree, next)
	if !ok || !list.IsBlock() {
		return nil
	}

	var params []ObjectRef
	for _, item := range splitCommas(list.Children()) {
		if len(item) == 0 || item[0].HasValue(constraintWords...) {
			continue
		}
		i := 0
		mode := ""
		if item[0].Type == token.ParmType {
			mode = item[0].Value
			i = 1
		}
		name, ok := token.At(item, i)
		if !ok || !isNameToken(name) {
			continue
		}

		createType := TokensText(item[i+1:])
		if mode != "" {
			createType = mode + " " + createType
		}
		params = append(params, ObjectRef{
			Tokens:     item,
			Object:     Object{Name: name.Value},
			Alias:      name.Value,
			CreateType: createType,
		})
	}
	return params
}
