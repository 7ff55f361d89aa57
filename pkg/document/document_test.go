package document_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/leapstack-labs/sqlscope/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleStatement(t *testing.T) {
	doc := document.New("select * from sample;")
	require.Len(t, doc.Statements, 1)

	stmt := doc.Statements[0]
	assert.Equal(t, document.Select, stmt.Type)
	assert.Len(t, stmt.Tokens, 4)
	assert.Equal(t, "select * from sample", stmt.Text())
}

func TestSegmentation(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		types []document.StatementType
	}{
		{
			name:  "semicolons",
			sql:   "select 1 from a;\n\ninsert into b values (1);\ndelete from c",
			types: []document.StatementType{document.Select, document.Insert, document.Delete},
		},
		{
			name:  "empty statements dropped",
			sql:   ";;\n;select 1 from a;;",
			types: []document.StatementType{document.Select},
		},
		{
			name: "begin closes header",
			sql:  "create procedure p() begin set x = 1; end",
			types: []document.StatementType{
				document.Create, document.Set, document.End,
			},
		},
		{
			name: "begin atomic stays with header",
			sql:  "create trigger t after insert on x for each row begin atomic set a = 1; end",
			types: []document.StatementType{
				document.Create, document.Set, document.End,
			},
		},
		{
			name: "conditional bodies",
			sql:  "if a = 1 then set b = 1; elseif a = 2 then set b = 2; else set b = 3; end if;",
			types: []document.StatementType{
				document.If, document.Set, document.Elseif, document.Set,
				document.Else, document.Set, document.End,
			},
		},
		{
			name: "loops",
			sql:  "while a < 3 do set a = a + 1; end while; lbl: loop leave lbl; end loop; repeat set a = 1; until a > 0 end repeat;",
			types: []document.StatementType{
				document.While, document.Set, document.End,
				document.Loop, document.Leave, document.End,
				document.Repeat, document.Set, document.Unknown,
			},
		},
		{
			name:  "then inside case expression does not split",
			sql:   "select case when a = 1 then 'x' else 'y' end from t",
			types: []document.StatementType{document.Select},
		},
		{
			name:  "end without terminator",
			sql:   "begin\nend\nselect 1 from x",
			types: []document.StatementType{document.Begin, document.End, document.Select},
		},
		{
			name:  "end if without terminator",
			sql:   "end if\nset a = 1",
			types: []document.StatementType{document.End, document.Set},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New(tt.sql)
			types := make([]document.StatementType, len(doc.Statements))
			for i, stmt := range doc.Statements {
				types[i] = stmt.Type
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

func TestStatementLabel(t *testing.T) {
	doc := document.New("outer: begin\nleave outer;\nend outer")
	require.Len(t, doc.Statements, 3)

	assert.Equal(t, "outer", doc.Statements[0].Label)
	assert.Equal(t, document.Begin, doc.Statements[0].Type)
	assert.True(t, doc.Statements[0].IsCompoundStart())
	assert.True(t, doc.Statements[2].IsCompoundEnd())
}

func TestStatementCountBounds(t *testing.T) {
	parts := []string{"select 1 from a", "update b set c = 1", "values 1", "call p('x;y')", "delete from d"}
	for n := 1; n <= len(parts); n++ {
		sql := strings.Join(parts[:n], ";\n")
		doc := document.New(sql)
		semicolons := n - 1
		assert.GreaterOrEqual(t, len(doc.Statements), 1, sql)
		assert.LessOrEqual(t, len(doc.Statements), semicolons+1, sql)
	}
}

func TestStatementGroups(t *testing.T) {
	body := []string{
		"declare x int default 0",
		"if x = 0 then",
		"set x = 1",
		"end if",
		"while x < 10 do",
		"set x = x + 1",
		"end while",
		"call other(x)",
	}
	sql := "create or replace procedure lib.p (in a int)\nbegin\n" + strings.Join(body, ";\n") + ";\nend;\nselect * from x;"
	doc := document.New(sql)

	groups := doc.StatementGroups()
	require.Len(t, groups, 2)

	routine := groups[0].Statements
	assert.Len(t, routine, len(body)+2)
	assert.Equal(t, document.Create, routine[0].Type)
	assert.Equal(t, document.End, routine[len(routine)-1].Type)
	assert.Equal(t, token.Range{Start: 0, End: strings.Index(sql, ";\nselect")}, groups[0].Range)

	assert.Len(t, groups[1].Statements, 1)
	assert.Equal(t, document.Select, groups[1].Statements[0].Type)
}

func TestProcedureGroupSize(t *testing.T) {
	for m := 0; m <= 4; m++ {
		var b strings.Builder
		b.WriteString("CREATE PROCEDURE lib.p ()\nLANGUAGE SQL\nBEGIN\n")
		for i := 0; i < m; i++ {
			b.WriteString("  CALL lib.q();\n")
		}
		b.WriteString("END;\n")

		groups := document.New(b.String()).StatementGroups()
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Statements, m+2)
	}
}

func TestUnclosedGroupRunsToEnd(t *testing.T) {
	doc := document.New("create procedure p() begin set a = 1; set b = 2;")
	groups := doc.StatementGroups()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Statements, 3)
}

func TestOffsetLookups(t *testing.T) {
	sql := "select a from t1;\nselect b from myschema.t2"
	doc := document.New(sql)
	require.Len(t, doc.Statements, 2)

	stmt, ok := doc.StatementByOffset(3)
	require.True(t, ok)
	assert.Equal(t, doc.Statements[0], stmt)

	stmt, ok = doc.StatementByOffset(len(sql) + 10)
	require.True(t, ok)
	assert.Equal(t, doc.Statements[1], stmt)

	second := strings.Index(sql, "myschema")
	tk, ok := doc.TokenByOffset(second + 2)
	require.True(t, ok)
	assert.Equal(t, "myschema", tk.Value)

	// cursor right after a word finds the word
	tk, ok = doc.TokenByOffset(len(sql))
	require.True(t, ok)
	assert.Equal(t, "t2", tk.Value)

	group, ok := doc.GroupByOffset(second)
	require.True(t, ok)
	assert.Equal(t, doc.Statements[1], group.Statements[0])

	empty := document.New("")
	_, ok = empty.StatementByOffset(0)
	assert.False(t, ok)
	_, ok = empty.TokenByOffset(0)
	assert.False(t, ok)
}

func TestTokenByOffsetInsideBlock(t *testing.T) {
	sql := "select count(distinct a) from t"
	doc := document.New(sql)

	tk, ok := doc.TokenByOffset(strings.Index(sql, "distinct") + 1)
	require.True(t, ok)
	assert.Equal(t, token.Word, tk.Type)
	assert.Equal(t, "distinct", tk.Value)
}

func TestTokensText(t *testing.T) {
	doc := document.New("select  a ,\n   b from   t")
	stmt := doc.Statements[0]
	assert.Equal(t, "select a , b from t", document.TokensText(stmt.Tokens))
	assert.Equal(t, "select a , b from t", stmt.TokensText(stmt.Blocks()))
}
