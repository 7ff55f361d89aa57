package commands

import (
	"testing"

	"github.com/leapstack-labs/sqlscope/internal/cli/testutil"
	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/leapstack-labs/sqlscope/pkg/format"
	"github.com/stretchr/testify/assert"
)

func newTestSession() (*replSession, *testutil.TestRenderer) {
	tr := testutil.NewTestRendererMarkdown()
	return newReplSession(tr.Renderer, format.DefaultOptions(), catalog.NamingSQL), tr
}

func TestReplSession_SingleStatement(t *testing.T) {
	s, tr := newTestSession()

	assert.False(t, s.feed("select * from lib.t a"))
	assert.True(t, s.pending())
	assert.Empty(t, tr.Output())

	assert.False(t, s.feed("where a.x = :host;"))
	assert.False(t, s.pending())

	out := tr.Output()
	assert.Contains(t, out, "## 1. Select")
	assert.Contains(t, out, "uses lib.t as a")
	assert.Contains(t, out, "1 parameter markers")
	assert.Contains(t, out, "select * \nfrom lib.t a \nwhere a.x = :host")
	testutil.AssertNoANSI(t, out)
}

func TestReplSession_CompoundBody(t *testing.T) {
	s, tr := newTestSession()

	lines := []string{
		"create procedure lib.p (in a int)",
		"begin",
		"  declare x int default 0;",
		"  set x = a;",
	}
	for _, line := range lines {
		assert.False(t, s.feed(line))
	}
	assert.True(t, s.pending(), "body is still open")
	assert.Empty(t, tr.Output())

	assert.False(t, s.feed("end;"))
	assert.False(t, s.pending())

	out := tr.Output()
	assert.Contains(t, out, "Create Procedure lib.p")
	assert.Contains(t, out, "param a in int")
	assert.Contains(t, out, "declares x int default 0")
	assert.Contains(t, out, "End")
}

func TestReplSession_BlankLineFlushes(t *testing.T) {
	s, tr := newTestSession()

	s.feed("with t(a) as (select a from lib.x)")
	s.feed("select * from t")
	assert.True(t, s.pending())

	s.feed("")
	assert.False(t, s.pending())
	out := tr.Output()
	assert.Contains(t, out, "## 1. With")
	assert.Contains(t, out, "defines cte t")
	assert.Contains(t, out, "cte t (a)")
}

func TestReplSession_DotCommands(t *testing.T) {
	s, tr := newTestSession()

	assert.False(t, s.feed(".help"))
	assert.Contains(t, tr.Output(), ".format on|off")

	assert.False(t, s.feed(".format off"))
	assert.False(t, s.showFormat, "format should be off")
	tr.Reset()
	s.feed("select 1 from t;")
	assert.NotContains(t, tr.Output(), "select 1 \nfrom t")

	assert.False(t, s.feed(".tokens on"))
	tr.Reset()
	s.feed("select 1 from t;")
	assert.Contains(t, tr.Output(), "tokens, range 0-")

	tr.Reset()
	s.feed(".format maybe")
	assert.Contains(t, tr.ErrorOutput(), "usage: .format on|off")

	tr.Reset()
	s.feed(".bogus")
	assert.Contains(t, tr.ErrorOutput(), "unknown command .bogus")

	s.feed("select 1")
	assert.True(t, s.pending())
	s.reset()
	assert.False(t, s.pending())

	assert.True(t, s.feed(".quit"))
	assert.True(t, s.feed(".exit"))
}

func TestReplSession_FlushEmpty(t *testing.T) {
	s, tr := newTestSession()
	s.flush()
	s.feed("")
	assert.Empty(t, tr.Output())
}

func TestOpenBodies(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"plain", "select 1 from t;", 0},
		{"open routine", "create procedure p () begin declare a int;", 1},
		{"closed routine", "create procedure p () begin declare a int; end;", 0},
		{"nested if", "create procedure p () begin if a = 1 then set b = 1;", 2},
		{"else keeps depth", "create procedure p () begin if a = 1 then set b = 1; else set b = 2;", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, openBodies(document.New(tt.sql)))
		})
	}
}
