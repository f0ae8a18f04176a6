package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosCompare(t *testing.T) {
	t.Parallel()
	a := Pos{Offset: 3, Line: 1, Column: 4}
	b := Pos{Offset: 10, Line: 2, Column: 1}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		span  Span
		valid bool
		empty bool
		len   uint32
	}{
		{"regular", NewSpan(0, 50), true, false, 50},
		{"insertion point", NewSpan(7, 7), true, true, 0},
		{"inverted", NewSpan(9, 2), false, false, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, tt.span.Valid())
			assert.Equal(t, tt.empty, tt.span.Empty())
			assert.Equal(t, tt.len, tt.span.Len())
		})
	}
}

func TestSpanContainsAndCover(t *testing.T) {
	t.Parallel()
	outer := NewSpan(0, 50)
	inner := NewSpan(10, 20)

	assert.True(t, outer.Contains(inner))
	assert.True(t, outer.Contains(outer))
	assert.False(t, inner.Contains(outer))
	assert.True(t, outer.Contains(NewSpan(50, 50)))

	assert.Equal(t, NewSpan(5, 30), NewSpan(5, 12).Cover(NewSpan(20, 30)))
	assert.Equal(t, outer, inner.Cover(outer))
}

func TestSpanString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "@10-@20", NewSpan(10, 20).String())

	s := Span{Start: Pos{Offset: 0, Line: 1, Column: 1}, End: Pos{Offset: 4, Line: 1, Column: 5}}
	assert.Equal(t, "1:1-1:5", s.String())
}
