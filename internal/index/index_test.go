package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestBuild(t *testing.T) {
	t.Run("counts vectors", func(t *testing.T) {
		idx, err := Build([][]float32{{1, 0}, {0, 1}, {0.5, 0.5}})
		require.NoError(t, err)
		assert.Equal(t, 3, idx.Count())
		assert.Equal(t, 2, idx.Dimension())
	})

	t.Run("empty set rejected", func(t *testing.T) {
		_, err := Build(nil)
		require.ErrorIs(t, err, ErrNoVectors)
	})

	t.Run("ragged dimensions rejected", func(t *testing.T) {
		_, err := Build([][]float32{{1, 0}, {0, 1, 2}})
		require.Error(t, err)
	})

	t.Run("copies input", func(t *testing.T) {
		vecs := [][]float32{{1, 0}, {0, 1}}
		idx, err := Build(vecs)
		require.NoError(t, err)
		vecs[0][0] = 99
		positions, err := idx.Search([]float32{1, 0}, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, positions)
	})
}

func TestSearch_Ordering(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}, {0.5, 0.5}})
	require.NoError(t, err)

	positions, err := idx.Search([]float32{0.9, 0.1}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, positions)
}

func TestSearch_TiesByLowestPosition(t *testing.T) {
	idx, err := Build([][]float32{{0, 1}, {1, 0}, {1, 0}})
	require.NoError(t, err)

	positions, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, positions)
}

func TestSearch_SaturatesWhenKExceedsCount(t *testing.T) {
	idx, err := Build([][]float32{{0.5, 0.5}})
	require.NoError(t, err)

	positions, err := idx.Search([]float32{0.6, 0.4}, 4)
	require.NoError(t, err)
	assert.Len(t, positions, 4)
	for _, p := range positions {
		assert.Equal(t, 0, p)
	}
}

func TestSearch_Validation(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}})
	require.NoError(t, err)

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := idx.Search([]float32{1, 2, 3}, 1)
		require.Error(t, err)
	})
	t.Run("non-positive k", func(t *testing.T) {
		_, err := idx.Search([]float32{1, 0}, 0)
		require.Error(t, err)
	})
	t.Run("nil index", func(t *testing.T) {
		var empty *Flat
		_, err := empty.Search([]float32{1, 0}, 1)
		require.ErrorIs(t, err, ErrEmptyIndex)
	})
}

func TestSearch_Deterministic(t *testing.T) {
	idx, err := Build([][]float32{{0.2, 0.8}, {0.9, 0.3}, {0.4, 0.4}, {0.1, 0.1}})
	require.NoError(t, err)

	first, err := idx.Search([]float32{0.5, 0.5}, 4)
	require.NoError(t, err)
	second, err := idx.Search([]float32{0.5, 0.5}, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRetrieve(t *testing.T) {
	segments := []domain.Segment{
		{Position: 0, Text: "AI segment"},
		{Position: 1, Text: "ML segment"},
		{Position: 2, Text: "NLP segment"},
	}
	idx, err := Build([][]float32{{1, 0}, {0, 1}, {0.5, 0.5}})
	require.NoError(t, err)

	got, err := Retrieve([]float32{0.9, 0.1}, idx, segments, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AI segment", got[0].Text)
	assert.Equal(t, "NLP segment", got[1].Text)
}

func TestRetrieve_Validation(t *testing.T) {
	segments := []domain.Segment{{Position: 0, Text: "only"}}

	t.Run("nil index", func(t *testing.T) {
		_, err := Retrieve([]float32{1}, nil, segments, 1)
		require.ErrorIs(t, err, ErrEmptyIndex)
	})

	t.Run("segment count mismatch", func(t *testing.T) {
		idx, err := Build([][]float32{{1, 0}, {0, 1}})
		require.NoError(t, err)
		_, err = Retrieve([]float32{1, 0}, idx, segments, 1)
		require.Error(t, err)
	})
}
