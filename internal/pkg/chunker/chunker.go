// Package chunker splits extracted document text into overlapping windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/futig/studyroom-rag/internal/entity"
)

const (
	DefaultSize    = 800
	DefaultOverlap = 200
)

// Segment is one window of text with rune offsets into the source text.
// Offsets describe the untrimmed window; Content is trimmed.
type Segment struct {
	Content string
	Start   int
	End     int
}

type Chunker struct {
	size    int
	overlap int
}

// New validates the window configuration. A non-positive step would never terminate.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", entity.ErrInvalidChunkConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", entity.ErrInvalidChunkConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than size %d", entity.ErrInvalidChunkConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns windows in order. Whitespace-only windows are skipped, so
// Segment indices in the result are contiguous even when the text has gaps.
func (c *Chunker) Split(text string) []Segment {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.size - c.overlap
	segments := make([]Segment, 0, n/step+1)

	for start := 0; ; start += step {
		end := min(start+c.size, n)

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			segments = append(segments, Segment{Content: content, Start: start, End: end})
		}

		if end == n {
			break
		}
	}

	return segments
}

// Chunks converts segments into indexed chunks for a file
func (c *Chunker) Chunks(fileID string, text string, meta entity.ChunkMetadata) []*entity.Chunk {
	segments := c.Split(text)
	chunks := make([]*entity.Chunk, len(segments))
	for i, s := range segments {
		chunks[i] = &entity.Chunk{
			FileID:    fileID,
			Index:     i,
			Content:   s.Content,
			CharStart: s.Start,
			CharEnd:   s.End,
			Metadata:  meta,
		}
	}
	return chunks
}
