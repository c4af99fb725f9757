package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// "a (b)" with a gap at offset 1
var sample = Stream{
	{Type: "ident", Start: 0, End: 1},
	{Type: "(", Start: 2, End: 3},
	{Type: "ident", Start: 3, End: 4},
	{Type: ")", Start: 4, End: 5},
}

func TestStreamIndexing(t *testing.T) {
	tests := []struct {
		offset               int
		at, before, endingAt int
	}{
		{offset: 0, at: 0, before: -1, endingAt: -1},
		{offset: 1, at: -1, before: 0, endingAt: 0},
		{offset: 2, at: 1, before: 0, endingAt: -1},
		{offset: 3, at: 2, before: 1, endingAt: 1},
		{offset: 4, at: 3, before: 2, endingAt: 2},
		{offset: 5, at: -1, before: 3, endingAt: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.at, sample.IndexAt(tt.offset), "IndexAt(%d)", tt.offset)
		assert.Equal(t, tt.before, sample.IndexBefore(tt.offset), "IndexBefore(%d)", tt.offset)
		assert.Equal(t, tt.endingAt, sample.IndexEndingAt(tt.offset), "IndexEndingAt(%d)", tt.offset)
	}

	var empty Stream
	assert.Equal(t, -1, empty.IndexAt(0))
	assert.Equal(t, -1, empty.IndexBefore(0))
}

func TestTokenText(t *testing.T) {
	text := []byte("a (b)")
	assert.Equal(t, "(", string(sample[1].Text(text)))
	assert.Equal(t, 1, sample[1].Len())
	assert.True(t, sample[1].Contains(2))
	assert.False(t, sample[1].Contains(3))
	assert.Nil(t, Token{Start: 3, End: 9}.Text(text))
}

func TestSliceIterator(t *testing.T) {
	it := IteratorAt(sample, 2)
	require.False(t, it.AtEnd())
	assert.Equal(t, Type("("), it.Type())
	assert.Equal(t, 2, it.Start())
	assert.Equal(t, 3, it.End())

	fork := it.Clone()
	fork.Advance()
	fork.Advance()
	assert.Equal(t, Type(")"), fork.Type())
	assert.Equal(t, 1, it.Index(), "clones scan independently")

	fork.Advance()
	assert.True(t, fork.AtEnd())
	assert.Equal(t, None, fork.Type())
	assert.Equal(t, -1, fork.Start())
	fork.Advance()
	fork.Retreat()
	assert.Equal(t, Type(")"), fork.Type(), "advance past the end sticks")

	back := IteratorBefore(sample, 2)
	assert.Equal(t, Type("ident"), back.Type())
	back.Retreat()
	assert.True(t, back.AtEnd())
	_, ok := back.Token()
	assert.False(t, ok)
	back.Retreat()
	back.Advance()
	assert.Equal(t, 0, back.Index())

	assert.True(t, IteratorAt(sample, 1).AtEnd())
}

func TestIndexAtProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "tokens")
		var s Stream
		pos := 0
		for i := 0; i < n; i++ {
			pos += rapid.IntRange(0, 2).Draw(rt, "gap")
			width := rapid.IntRange(1, 3).Draw(rt, "width")
			s = append(s, Token{Type: "t", Start: pos, End: pos + width})
			pos += width
		}
		offset := rapid.IntRange(0, pos+1).Draw(rt, "offset")

		i := s.IndexAt(offset)
		if i >= 0 {
			if !s[i].Contains(offset) {
				rt.Fatalf("token %d %+v does not contain %d", i, s[i], offset)
			}
		} else {
			for _, tok := range s {
				if tok.Contains(offset) {
					rt.Fatalf("missed token %+v containing %d", tok, offset)
				}
			}
		}

		b := s.IndexBefore(offset)
		if b >= 0 && s[b].Start >= offset {
			rt.Fatalf("IndexBefore(%d) = %d starts at %d", offset, b, s[b].Start)
		}
		if b+1 < len(s) && s[b+1].Start < offset {
			rt.Fatalf("IndexBefore(%d) = %d is not the last", offset, b)
		}
	})
}
