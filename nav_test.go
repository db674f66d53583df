package pubsite

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(ids ...string) []Post {
	posts := make([]Post, len(ids))
	for i, id := range ids {
		posts[i] = Post{ID: id, Title: "Post " + id, Slug: "/" + id + "/", Order: i + 1}
	}
	return posts
}

func TestResolveNeighborsMiddle(t *testing.T) {
	s := seq("a", "b", "c")

	n, err := ResolveNeighbors(s, "b")
	require.NoError(t, err)
	require.NotNil(t, n.Previous)
	require.NotNil(t, n.Next)
	assert.Equal(t, "a", n.Previous.ID)
	assert.Equal(t, "c", n.Next.ID)
}

func TestResolveNeighborsSingle(t *testing.T) {
	n, err := ResolveNeighbors(seq("a"), "a")
	require.NoError(t, err)
	assert.Nil(t, n.Previous)
	assert.Nil(t, n.Next)
}

func TestResolveNeighborsEnds(t *testing.T) {
	s := seq("a", "b", "c")

	first, err := ResolveNeighbors(s, "a")
	require.NoError(t, err)
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.Equal(t, "b", first.Next.ID)

	last, err := ResolveNeighbors(s, "c")
	require.NoError(t, err)
	require.NotNil(t, last.Previous)
	assert.Equal(t, "b", last.Previous.ID)
	assert.Nil(t, last.Next)
}

func TestResolveNeighborsAllPositions(t *testing.T) {
	for size := 1; size <= 6; size++ {
		ids := make([]string, size)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
		}
		s := seq(ids...)
		for i := range s {
			n, err := ResolveNeighbors(s, s[i].ID)
			require.NoError(t, err)
			if i > 0 {
				require.NotNil(t, n.Previous, "size %d index %d", size, i)
				assert.Equal(t, s[i-1], *n.Previous)
			} else {
				assert.Nil(t, n.Previous, "size %d index %d", size, i)
			}
			if i < len(s)-1 {
				require.NotNil(t, n.Next, "size %d index %d", size, i)
				assert.Equal(t, s[i+1], *n.Next)
			} else {
				assert.Nil(t, n.Next, "size %d index %d", size, i)
			}
		}
	}
}

func TestResolveNeighborsNotFound(t *testing.T) {
	tests := []struct {
		name string
		seq  []Post
	}{
		{"empty", nil},
		{"absent", seq("a", "b", "c")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ResolveNeighbors(tt.seq, "zzz")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.Contains(t, err.Error(), `"zzz"`)
			assert.Nil(t, n.Previous)
			assert.Nil(t, n.Next)
		})
	}
}

func TestResolveNeighborsDuplicateIDFirstWins(t *testing.T) {
	s := seq("a", "dup", "b", "dup", "c")

	n, err := ResolveNeighbors(s, "dup")
	require.NoError(t, err)
	assert.Equal(t, "a", n.Previous.ID)
	assert.Equal(t, "b", n.Next.ID)
}

func TestResolveNeighborsDoesNotAliasInput(t *testing.T) {
	s := seq("a", "b", "c")

	n, err := ResolveNeighbors(s, "b")
	require.NoError(t, err)
	n.Previous.Title = "changed"
	assert.Equal(t, "Post a", s[0].Title)
}

func TestResolveNeighborsIsPositional(t *testing.T) {
	// Order in the slice wins even when it contradicts Order values.
	s := []Post{{ID: "x", Order: 3}, {ID: "y", Order: 1}, {ID: "z", Order: 2}}

	n, err := ResolveNeighbors(s, "y")
	require.NoError(t, err)
	assert.Equal(t, "x", n.Previous.ID)
	assert.Equal(t, "z", n.Next.ID)
}
