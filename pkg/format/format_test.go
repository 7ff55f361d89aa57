package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "from on its own line",
			input:    "select * from sample",
			opts:     DefaultOptions(),
			expected: "select * \nfrom sample",
		},
		{
			name:     "qualified names and commas",
			input:    "select a . b , c from lib . t where x = 1",
			opts:     DefaultOptions(),
			expected: "select a.b, c \nfrom lib.t \nwhere x = 1",
		},
		{
			name:     "keyword case upper",
			input:    "select a from t where b = 'x'",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper},
			expected: "SELECT a \nFROM t \nWHERE b = 'x'",
		},
		{
			name:     "identifier case upper",
			input:    "select a, count(b) from t",
			opts:     Options{TabWidth: 4, IdentifierCase: CaseUpper},
			expected: "select A, COUNT(B) \nfrom T",
		},
		{
			name:     "lower everything",
			input:    "SELECT A FROM \"MyTable\"",
			opts:     Options{TabWidth: 4, IdentifierCase: CaseLower, KeywordCase: CaseLower},
			expected: "select a \nfrom \"MyTable\"",
		},
		{
			name:     "add semicolon",
			input:    "select 1 from t",
			opts:     Options{TabWidth: 4, AddSemiColon: true},
			expected: "select 1 \nfrom t;",
		},
		{
			name:     "statements joined",
			input:    "select 1 from a; select 2 from b;",
			opts:     DefaultOptions(),
			expected: "select 1 \nfrom a;\nselect 2 \nfrom b",
		},
		{
			name:     "crlf input",
			input:    "select 1 from a;\r\nselect 2 from b",
			opts:     DefaultOptions(),
			expected: "select 1 \r\nfrom a;\r\nselect 2 \r\nfrom b",
		},
		{
			name:     "single token block inline",
			input:    "select count(*) from t",
			opts:     DefaultOptions(),
			expected: "select count(*) \nfrom t",
		},
		{
			name:     "short list inline",
			input:    "select substr(a, 1) from t",
			opts:     DefaultOptions(),
			expected: "select substr(a, 1) \nfrom t",
		},
		{
			name:     "long list expanded",
			input:    "insert into t (a, b, c) values (1, 2, 3)",
			opts:     Options{TabWidth: 2},
			expected: "insert \ninto t (\n  a,\n  b,\n  c\n) values (\n  1,\n  2,\n  3\n)",
		},
		{
			name:     "subquery expanded",
			input:    "select * from (select a from b) x",
			opts:     Options{TabWidth: 2},
			expected: "select * \nfrom (\n  select a \n  from b\n) x",
		},
		{
			name:     "tabs",
			input:    "select * from (select a from b)",
			opts:     Options{UseTabs: true},
			expected: "select * \nfrom (\n\tselect a \n\tfrom b\n)",
		},
		{
			name:     "host variables keep adjacency",
			input:    "select a into :x from t where b = :y.z and lbl/file = 1",
			opts:     DefaultOptions(),
			expected: "select a \ninto :x \nfrom t \nwhere b = :y.z and lbl/file = 1",
		},
		{
			name:     "slash before clause",
			input:    "select a/from t",
			opts:     DefaultOptions(),
			expected: "select a/ \nfrom t",
		},
		{
			name:     "colon before clause",
			input:    "select a:from t",
			opts:     DefaultOptions(),
			expected: "select a: \nfrom t",
		},
		{
			name:     "comments dropped",
			input:    "select a -- first\n/* block */ from t",
			opts:     DefaultOptions(),
			expected: "select a \nfrom t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.input, tt.opts))
		})
	}
}

func TestFormat_CompoundBody(t *testing.T) {
	input := strings.Join([]string{
		"create procedure lib.p () begin",
		"declare a int default 0;",
		"if a = 0 then set a = 1; else set a = 2; end if;",
		"end",
	}, "\n")

	expected := strings.Join([]string{
		"create procedure lib.p () begin",
		"  declare a int default 0;",
		"  if a = 0 then",
		"    set a = 1;",
		"  else",
		"    set a = 2;",
		"  end if;",
		"end",
	}, "\n")

	assert.Equal(t, expected, Format(input, Options{TabWidth: 2}))
}

func TestFormat_KeywordCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "reserved words upper",
			input:    "select a from t where a is not null and b = 1 group by a order by a desc",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper, IdentifierCase: CaseLower},
			expected: "SELECT a \nFROM t \nWHERE a IS NOT NULL AND b = 1 \nGROUP BY a \nORDER BY a DESC",
		},
		{
			name:     "reserved words lower",
			input:    "SELECT A FROM T WHERE A IS NOT NULL ORDER BY A DESC",
			opts:     Options{TabWidth: 4, KeywordCase: CaseLower, IdentifierCase: CaseUpper},
			expected: "select A \nfrom T \nwhere A is not null \norder by A desc",
		},
		{
			name:     "case expression",
			input:    "select case when a = 1 then 'x' else 'y' end from t",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper},
			expected: "SELECT CASE WHEN a = 1 THEN 'x' ELSE 'y' END \nFROM t",
		},
		{
			name:     "leading statement word",
			input:    "pipe x",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper},
			expected: "PIPE x",
		},
		{
			name:     "comment statement",
			input:    "comment on table lib.t is 'x'",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper},
			expected: "COMMENT ON TABLE lib.t IS 'x'",
		},
		{
			name:     "function names keep identifier case",
			input:    "select count(a), left(b, 1) from t",
			opts:     Options{TabWidth: 4, KeywordCase: CaseUpper, IdentifierCase: CaseLower},
			expected: "SELECT count(a), left(b, 1) \nFROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.input, tt.opts))
		})
	}
}

func TestFormat_KeywordCaseCompoundBody(t *testing.T) {
	input := strings.Join([]string{
		"create procedure lib.p (in a int)",
		"language sql",
		"begin",
		"if a > 0 then set b = 'pos'; end if;",
		"while a < 10 do set a = a + 1; end while;",
		"end",
	}, "\n")

	upper := strings.Join([]string{
		"CREATE PROCEDURE lib.p (IN a int) LANGUAGE SQL BEGIN",
		"  IF a > 0 THEN",
		"    SET b = 'pos';",
		"  END IF;",
		"  WHILE a < 10 DO",
		"    SET a = a + 1;",
		"  END WHILE;",
		"END",
	}, "\n")
	assert.Equal(t, upper, Format(input, Options{TabWidth: 2, KeywordCase: CaseUpper}))

	lower := strings.Join([]string{
		"create procedure lib.p (in a int) language sql begin",
		"  if a > 0 then",
		"    set b = 'pos';",
		"  end if;",
		"  while a < 10 do",
		"    set a = a + 1;",
		"  end while;",
		"end",
	}, "\n")
	assert.Equal(t, lower, Format(upper, Options{TabWidth: 2, KeywordCase: CaseLower}))
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"select * from sample",
		"select a.b, c from lib.t as x left outer join lib.u y on x.id = y.id where x.a in (1, 2, 3) order by 1",
		"with t(n1,n2) as (select * from qsys2.sysixadv) select * from t",
		"insert into t (a, b, c) values (:a, ?, 'x''y')",
		"create procedure lib.p (in a int, out b char(10))\nlanguage sql\nbegin\n declare c int;\n while c < 10 do\n set c = c + 1;\n end while;\n call other(a => c);\nend;",
		"select case when a = 1 then 'x' else 'y' end from t",
		"call qsys2.ifs_write('a', )",
		"select (((a))) from t where x = (",
		"lbl: begin\nleave lbl;\nend lbl",
		"select a/from t",
		"select a from t where a is not null group by a order by a desc",
	}

	opts := []Options{
		DefaultOptions(),
		{UseTabs: true, KeywordCase: CaseUpper, IdentifierCase: CaseLower, AddSemiColon: true},
	}

	for _, o := range opts {
		for _, input := range inputs {
			once := Format(input, o)
			twice := Format(once, o)
			require.Equal(t, once, twice, "input: %q", input)
		}
	}
}

func TestParseCase(t *testing.T) {
	tests := []struct {
		input   string
		want    Case
		wantErr bool
	}{
		{"", CasePreserve, false},
		{"preserve", CasePreserve, false},
		{"UPPER", CaseUpper, false},
		{" lower ", CaseLower, false},
		{"title", CasePreserve, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCase(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var c Case
	require.NoError(t, c.UnmarshalText([]byte("upper")))
	assert.Equal(t, CaseUpper, c)
	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "upper", string(text))
}
