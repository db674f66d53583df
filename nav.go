package pubsite

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested post does not exist, or when the
// current post is absent from the sequence it is navigated within.
var ErrNotFound = errors.New("pubsite: post not found")

// ResolveNeighbors locates currentID in seq and returns the posts positioned
// directly before and after it. The first post with a matching ID wins.
// Positions follow seq's order, which is not necessarily chronological.
func ResolveNeighbors(seq []Post, currentID string) (Neighbors, error) {
	idx := -1
	for i := range seq {
		if seq[i].ID == currentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Neighbors{}, fmt.Errorf("resolve neighbors of %q: %w", currentID, ErrNotFound)
	}

	var n Neighbors
	if idx > 0 {
		prev := seq[idx-1]
		n.Previous = &prev
	}
	if idx < len(seq)-1 {
		next := seq[idx+1]
		n.Next = &next
	}
	return n, nil
}
