package chunker

import (
	"fmt"

	"docchat/internal/domain"
)

// Chunker splits text into fixed-width segments with a fixed overlap.
// Chunking is a pure function of the input: the same text always yields
// the same ordered segments.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. size must be positive and overlap must be in
// [0, size); sizes are counted in runes so multi-byte characters are
// never split mid-sequence.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into segments of at most size runes, each starting
// size-overlap runes after the previous one. Only the final segment may be
// shorter than size; it is emitted as-is, without padding. Empty text
// yields no segments.
func (c *Chunker) Chunk(text string) []domain.Segment {
	runes := []rune(text)
	stride := c.size - c.overlap
	var segments []domain.Segment
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, domain.Segment{
			Position: len(segments),
			Text:     string(runes[start:end]),
		})
	}
	return segments
}
