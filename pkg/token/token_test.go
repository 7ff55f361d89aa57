package token_test

import (
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/token"
	"github.com/stretchr/testify/assert"
)

func TestTokenVariants(t *testing.T) {
	leaf := token.New(token.Word, "abc", token.Range{Start: 0, End: 3})
	assert.False(t, leaf.IsBlock())
	assert.Nil(t, leaf.Children())
	assert.Equal(t, "ABC", leaf.Upper())

	block := token.NewBlock(token.Range{Start: 4, End: 9}, []token.Token{leaf})
	assert.True(t, block.IsBlock())
	assert.Empty(t, block.Value)
	assert.Len(t, block.Children(), 1)

	empty := token.New(token.Block, "ignored", token.Range{Start: 0, End: 2})
	assert.True(t, empty.IsBlock())
	assert.Empty(t, empty.Value)
	assert.NotNil(t, empty.Children())
}

func TestTokenIs(t *testing.T) {
	tk := token.New(token.Keyword, "Begin", token.Range{Start: 0, End: 5})

	tests := []struct {
		name   string
		typ    token.Type
		values []string
		want   bool
	}{
		{"type only", token.Keyword, nil, true},
		{"wrong type", token.Word, nil, false},
		{"value ignoring case", token.Keyword, []string{"BEGIN"}, true},
		{"one of values", token.Keyword, []string{"END", "begin"}, true},
		{"value mismatch", token.Keyword, []string{"END"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tk.Is(tt.typ, tt.values...))
		})
	}
	assert.True(t, tk.HasValue("begin"))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "statementType", token.StatementType.String())
	assert.Equal(t, "block", token.Block.String())
	assert.Equal(t, "TOKEN(999)", token.Type(999).String())
	assert.True(t, token.SQLName.IsName())
	assert.False(t, token.String.IsName())
}

func TestRange(t *testing.T) {
	r := token.Range{Start: 2, End: 5}
	assert.True(t, r.Contains(2))
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(5))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, token.Range{Start: 0, End: 5}, r.Cover(token.Range{Start: 0, End: 1}))
	assert.True(t, r.IsValid())
	assert.False(t, token.Range{Start: 3, End: 1}.IsValid())
}

func TestSpanAndAt(t *testing.T) {
	tokens := []token.Token{
		token.New(token.Word, "a", token.Range{Start: 1, End: 2}),
		token.New(token.Dot, ".", token.Range{Start: 2, End: 3}),
		token.New(token.Word, "b", token.Range{Start: 3, End: 4}),
	}
	assert.Equal(t, token.Range{Start: 1, End: 4}, token.Span(tokens))
	assert.Equal(t, token.Range{}, token.Span(nil))

	tk, ok := token.At(tokens, 2)
	assert.True(t, ok)
	assert.Equal(t, "b", tk.Value)
	_, ok = token.At(tokens, 3)
	assert.False(t, ok)
}
