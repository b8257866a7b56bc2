// Package index provides an exact nearest-neighbor index over a fixed set
// of embedding vectors, searched by Euclidean distance.
package index

import (
	"errors"
	"fmt"
	"sort"

	"docchat/internal/domain"
)

var (
	// ErrNoVectors is returned when Build is given an empty vector set.
	ErrNoVectors = errors.New("index: build requires at least one vector")
	// ErrEmptyIndex is returned when searching a nil index.
	ErrEmptyIndex = errors.New("index: no index available")
)

// Flat is a brute-force exact index. It is immutable after Build and safe
// for concurrent searches; rebuilding means constructing a new one.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build constructs an index over the given vectors. All vectors must share
// one dimension and the set must be non-empty. Position i in the index
// corresponds to element i of the input.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("index: zero-dimension vector")
	}
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("index: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		stored[i] = append([]float32(nil), v...)
	}
	return &Flat{dim: dim, vectors: stored}, nil
}

// Count returns the number of stored vectors.
func (f *Flat) Count() int { return len(f.vectors) }

// Dimension returns the dimension of the stored vectors.
func (f *Flat) Dimension() int { return f.dim }

// Search returns k positions ordered by ascending Euclidean distance to
// query, ties broken by lowest position. If k exceeds the number of stored
// vectors, the nearest position is repeated to fill the result; callers
// must tolerate duplicates.
func (f *Flat) Search(query []float32, k int) ([]int, error) {
	if f == nil || len(f.vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("index: query has dimension %d, want %d", len(query), f.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("index: k must be positive, got %d", k)
	}

	dists := make([]float64, len(f.vectors))
	for i, v := range f.vectors {
		dists[i] = sqDistance(v, query)
	}
	positions := make([]int, len(f.vectors))
	for i := range positions {
		positions[i] = i
	}
	sort.Slice(positions, func(a, b int) bool {
		pa, pb := positions[a], positions[b]
		if dists[pa] != dists[pb] {
			return dists[pa] < dists[pb]
		}
		return pa < pb
	})

	if k <= len(positions) {
		return positions[:k], nil
	}
	out := make([]int, 0, k)
	out = append(out, positions...)
	for len(out) < k {
		out = append(out, positions[0])
	}
	return out, nil
}

// Retrieve maps the k nearest positions to their segments, preserving the
// ascending-distance order. segments must be the exact ordered set the
// index was built from.
func Retrieve(query []float32, f *Flat, segments []domain.Segment, k int) ([]domain.Segment, error) {
	if f == nil {
		return nil, ErrEmptyIndex
	}
	if f.Count() != len(segments) {
		return nil, fmt.Errorf("index: %d segments for %d vectors", len(segments), f.Count())
	}
	positions, err := f.Search(query, k)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Segment, len(positions))
	for i, p := range positions {
		out[i] = segments[p]
	}
	return out, nil
}

// Squared distance orders identically to Euclidean distance, so the square
// root is never taken.
func sqDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
