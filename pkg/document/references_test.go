package document_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstStatement(t *testing.T, sql string) *document.Statement {
	t.Helper()
	doc := document.New(sql)
	require.NotEmpty(t, doc.Statements)
	return doc.Statements[0]
}

type refWant struct {
	schema     string
	name       string
	alias      string
	createType string
	udtf       bool
	cte        bool
}

func simplifyRefs(refs []document.ObjectRef) []refWant {
	out := make([]refWant, len(refs))
	for i, r := range refs {
		out[i] = refWant{
			schema:     r.Object.Schema,
			name:       r.Object.Name,
			alias:      r.Alias,
			createType: r.CreateType,
			udtf:       r.IsUDTF,
			cte:        r.CTE,
		}
	}
	return out
}

func TestObjectReferences(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []refWant
	}{
		{
			name: "qualified with alias",
			sql:  "select * from myschema.sample as a;",
			want: []refWant{{schema: "myschema", name: "sample", alias: "a"}},
		},
		{
			name: "system naming and bare alias",
			sql:  "select * from mylib/sample s",
			want: []refWant{{schema: "mylib", name: "sample", alias: "s"}},
		},
		{
			name: "joins and comma list",
			sql:  "select * from a x, b left outer join lib.c on x.id = c.id cross join d where 1 = 1",
			want: []refWant{
				{name: "a", alias: "x"},
				{name: "b"},
				{schema: "lib", name: "c"},
				{name: "d"},
			},
		},
		{
			name: "subquery",
			sql:  "select * from (select * from inner_t) as q where a in (select b from other)",
			want: []refWant{{name: "inner_t"}, {name: "other"}},
		},
		{
			name: "table function",
			sql:  "select * from table(qsys2.ifs_read('/tmp/x')) as t",
			want: []refWant{{schema: "qsys2", name: "ifs_read", alias: "t", udtf: true}},
		},
		{
			name: "lateral subquery",
			sql:  "select * from a, lateral (select * from b where b.id = a.id) as l",
			want: []refWant{{name: "a"}, {name: "b"}},
		},
		{
			name: "insert",
			sql:  "insert into lib.t (a, b) select a, b from lib.s",
			want: []refWant{{schema: "lib", name: "t"}, {schema: "lib", name: "s"}},
		},
		{
			name: "select into host variables",
			sql:  "select a into :x from lib.t",
			want: []refWant{{schema: "lib", name: "t"}},
		},
		{
			name: "update",
			sql:  "update lib.t x set a = (select max(b) from lib.s) where c = 1",
			want: []refWant{{schema: "lib", name: "t", alias: "x"}, {schema: "lib", name: "s"}},
		},
		{
			name: "delete",
			sql:  "delete from lib.t where a = 1",
			want: []refWant{{schema: "lib", name: "t"}},
		},
		{
			name: "merge",
			sql:  "merge into lib.t as tgt using lib.s as src on tgt.id = src.id when matched then delete",
			want: []refWant{
				{schema: "lib", name: "t", alias: "tgt"},
				{schema: "lib", name: "s", alias: "src"},
			},
		},
		{
			name: "call",
			sql:  "call qsys2.ifs_write('a', 'b')",
			want: []refWant{{schema: "qsys2", name: "ifs_write"}},
		},
		{
			name: "create view",
			sql:  "create or replace view lib.v as select * from lib.t a join lib.u b on a.id = b.id",
			want: []refWant{
				{schema: "lib", name: "v", createType: "view"},
				{schema: "lib", name: "t", alias: "a"},
				{schema: "lib", name: "u", alias: "b"},
			},
		},
		{
			name: "create index",
			sql:  "create unique index lib.ix on lib.t (a, b)",
			want: []refWant{
				{schema: "lib", name: "ix", createType: "unique index"},
				{schema: "lib", name: "t"},
			},
		},
		{
			name: "create table foreign key",
			sql:  "create table lib.orders (id int, cust int, foreign key (cust) references lib.customers (id))",
			want: []refWant{
				{schema: "lib", name: "orders", createType: "table"},
				{schema: "lib", name: "customers"},
			},
		},
		{
			name: "external procedure",
			sql:  "create procedure lib.p (in a int) language rpgle external name 'MYLIB/MYPGM(entry)'",
			want: []refWant{
				{schema: "lib", name: "p", createType: "procedure"},
				{schema: "MYLIB", name: "MYPGM"},
			},
		},
		{
			name: "alter",
			sql:  "alter table lib.t add column c int",
			want: []refWant{{schema: "lib", name: "t", createType: "table"}},
		},
		{
			name: "drop",
			sql:  "drop view lib.v",
			want: []refWant{{schema: "lib", name: "v", createType: "view"}},
		},
		{
			name: "declare variable",
			sql:  "declare total decimal(10, 2) default 0 ccsid 37",
			want: []refWant{{name: "total", createType: "decimal(10, 2) default 0 ccsid 37"}},
		},
		{
			name: "declare variable named like a kind",
			sql:  "declare index integer default 0",
			want: []refWant{{name: "index", createType: "integer default 0"}},
		},
		{
			name: "declare variable named type",
			sql:  "declare type varchar(10)",
			want: []refWant{{name: "type", createType: "varchar(10)"}},
		},
		{
			name: "declare global temporary table",
			sql:  "declare global temporary table session.tmp (a int)",
			want: []refWant{{schema: "session", name: "tmp", createType: "TABLE"}},
		},
		{
			name: "declare cursor",
			sql:  "declare c1 cursor for select * from lib.t",
			want: []refWant{{name: "c1", createType: "cursor"}},
		},
		{
			name: "declare handler",
			sql:  "declare continue handler for sqlexception set err = 1",
			want: []refWant{{name: "continue handler", createType: "HANDLER"}},
		},
		{
			name: "unknown statement",
			sql:  "frobnicate lib.t",
			want: []refWant{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := firstStatement(t, tt.sql)
			assert.Equal(t, tt.want, simplifyRefs(stmt.ObjectReferences()))
		})
	}
}

func TestCreateSystemName(t *testing.T) {
	stmt := firstStatement(t, "create table lib.long_table_name for system name ltn (a int)")
	refs := stmt.ObjectReferences()
	require.NotEmpty(t, refs)
	assert.Equal(t, "ltn", refs[0].Object.System)
	assert.Equal(t, "long_table_name", refs[0].Object.Name)
}

func TestCallReferenceIncludesArguments(t *testing.T) {
	sql := "call qsys2.ifs_write('a', 'b')"
	stmt := firstStatement(t, sql)
	refs := stmt.ObjectReferences()
	require.Len(t, refs, 1)

	r := refs[0].Range()
	assert.Equal(t, strings.Index(sql, "qsys2"), r.Start)
	assert.Equal(t, len(sql), r.End)
}

func TestCTEReferences(t *testing.T) {
	stmt := firstStatement(t, "with t(n1,n2) as (select * from qsys2.sysixadv) select * from t")
	require.Equal(t, document.With, stmt.Type)

	ctes := stmt.CTEReferences()
	require.Len(t, ctes, 1)
	assert.Equal(t, "t", ctes[0].Name)
	assert.Equal(t, []string{"n1", "n2"}, ctes[0].Columns)
	require.NotNil(t, ctes[0].Statement)
	assert.Equal(t, document.Select, ctes[0].Statement.Type)

	refs := simplifyRefs(stmt.ObjectReferences())
	assert.Equal(t, []refWant{
		{name: "t", cte: true},
		{schema: "qsys2", name: "sysixadv"},
		{name: "t"},
	}, refs)
}

func TestNestedCTEs(t *testing.T) {
	sql := "with a as (select * from lib.x), b as (with c as (select * from lib.y) select * from c) select * from a join b on a.k = b.k"
	stmt := firstStatement(t, sql)

	ctes := stmt.CTEReferences()
	require.Len(t, ctes, 2)
	assert.Equal(t, "a", ctes[0].Name)
	assert.Empty(t, ctes[0].Columns)
	assert.Equal(t, "b", ctes[1].Name)
	assert.Equal(t, document.With, ctes[1].Statement.Type)

	assert.Equal(t, []refWant{
		{name: "a", cte: true},
		{name: "b", cte: true},
		{schema: "lib", name: "x"},
		{name: "c", cte: true},
		{schema: "lib", name: "y"},
		{name: "c"},
		{name: "a"},
		{name: "b"},
	}, simplifyRefs(stmt.ObjectReferences()))
}

func TestReferenceByOffset(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		found  bool
		schema string
		ref    string
	}{
		{name: "after qualifier", sql: "select * from myschema.", found: true, schema: "myschema"},
		{name: "partial name", sql: "select * from myschema.sam", found: true, schema: "myschema", ref: "sam"},
		{name: "system naming", sql: "select * from mylib/", found: true, schema: "mylib"},
		{name: "bare name", sql: "select * from sam", found: true, ref: "sam"},
		{name: "after whitespace", sql: "select * from ", found: false},
		{name: "after operator", sql: "select * from t where a =", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := firstStatement(t, tt.sql)
			ref, ok := stmt.ReferenceByOffset(len(tt.sql))
			require.Equal(t, tt.found, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.schema, ref.Object.Schema)
			assert.Equal(t, tt.ref, ref.Object.Name)
		})
	}
}

func TestRoutineParameters(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []refWant
	}{
		{
			name: "procedure",
			sql:  "create procedure lib.p (in a int, out b char(10), c decimal(5, 2) default 0) begin",
			want: []refWant{
				{name: "a", alias: "a", createType: "in int"},
				{name: "b", alias: "b", createType: "out char(10)"},
				{name: "c", alias: "c", createType: "decimal(5, 2) default 0"},
			},
		},
		{
			name: "table columns",
			sql:  "create table lib.t (id int not null, name varchar(20), primary key (id))",
			want: []refWant{
				{name: "id", alias: "id", createType: "int not null"},
				{name: "name", alias: "name", createType: "varchar(20)"},
			},
		},
		{
			name: "no list",
			sql:  "create view lib.v as select 1 from x",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := firstStatement(t, tt.sql)
			params := stmt.RoutineParameters()
			if tt.want == nil {
				assert.Empty(t, params)
				return
			}
			assert.Equal(t, tt.want, simplifyRefs(params))
		})
	}
}

func TestDefinitions(t *testing.T) {
	sql := strings.Join([]string{
		"create procedure lib.p ()",
		"begin",
		"  declare a int default 0;",
		"  declare c1 cursor for select * from lib.t;",
		"  declare exit handler for sqlexception begin",
		"    set a = 1;",
		"  end;",
		"  open c1;",
		"end;",
		"create table lib.t2 (x int);",
		"select * from lib.t2;",
	}, "\n")
	doc := document.New(sql)

	defs := doc.Definitions()
	require.Len(t, defs, 2)

	assert.Equal(t, "p", defs[0].Object.Name)
	assert.Equal(t, "procedure", defs[0].CreateType)
	require.Len(t, defs[0].Children, 3)
	assert.Equal(t, "a", defs[0].Children[0].Object.Name)
	assert.Equal(t, "c1", defs[0].Children[1].Object.Name)
	assert.Equal(t, "HANDLER", defs[0].Children[2].CreateType)

	assert.Equal(t, "t2", defs[1].Object.Name)
	assert.Empty(t, defs[1].Children)
}
