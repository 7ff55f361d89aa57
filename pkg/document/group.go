package document

import (
	"sort"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// StatementGroup is one or more consecutive statements forming a single
// logical unit, such as a routine header, its body and the closing END.
type StatementGroup struct {
	Range      token.Range
	Statements []*Statement
}

// groupStatements clusters statements by body nesting. A statement that opens
// a body pushes the nesting counter and a matching END pops it; the group
// closes when the counter is back at zero. ELSE and ELSEIF leave it as is.
func groupStatements(statements []*Statement) []StatementGroup {
	var (
		groups  []StatementGroup
		current []*Statement
		depth   int
	)

	closeGroup := func() {
		if len(current) == 0 {
			return
		}
		groups = append(groups, StatementGroup{
			Range: token.Range{
				Start: current[0].Range.Start,
				End:   current[len(current)-1].Range.End,
			},
			Statements: current,
		})
		current = nil
	}

	for _, stmt := range statements {
		current = append(current, stmt)

		switch {
		case stmt.IsBranch():
		case stmt.OpensBody():
			depth++
		case stmt.ClosesBody():
			if depth > 0 {
				depth--
			}
		}

		if depth == 0 {
			closeGroup()
		}
	}
	closeGroup()

	return groups
}

// StatementGroups returns the statement groups in document order.
func (d *Document) StatementGroups() []StatementGroup {
	return d.groups
}

// GroupByOffset returns the group an offset falls in, using the same gap
// rules as StatementByOffset.
func (d *Document) GroupByOffset(offset int) (StatementGroup, bool) {
	i := sort.Search(len(d.groups), func(i int) bool {
		return d.groups[i].Range.Start > offset
	}) - 1
	if i < 0 {
		return StatementGroup{}, false
	}
	return d.groups[i], true
}
