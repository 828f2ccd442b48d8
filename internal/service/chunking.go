package service

import (
	"strings"
	"unicode"

	"github.com/stroytech/stroybot/internal/domain"
)

// ChunkConfig controls how raw documents are split before embedding.
type ChunkConfig struct {
	// Size is the maximum chunk length in runes.
	Size int
	// Overlap is the number of runes shared between consecutive chunks.
	Overlap int
}

// DefaultChunkConfig provides sane defaults for corpus chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    500,
		Overlap: 50,
	}
}

// Validate checks the chunking parameters.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap*2 >= c.Size {
		return domain.ErrInvalidChunkConfig
	}
	return nil
}

// SplitText splits text into overlapping windows of at most cfg.Size runes,
// cutting at the coarsest natural boundary available: paragraph break, then
// sentence end, then word boundary, then a hard rune cut. The split is
// deterministic: identical input and parameters always yield the identical
// chunk sequence. Empty input yields nil; input shorter than the chunk size
// yields a single chunk.
func SplitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}

	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := boundaryCut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - cfg.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// boundaryCut finds the best cut position in (start, end], preferring a
// paragraph break, then a sentence end, then whitespace. The search floor is
// the window midpoint so chunks never degenerate below half the target size.
func boundaryCut(runes []rune, start, end int) int {
	floor := start + (end-start)/2

	for i := end; i > floor; i-- {
		if runes[i-1] == '\n' && i-2 >= start && runes[i-2] == '\n' {
			return i
		}
	}

	for i := end; i > floor; i-- {
		switch runes[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}

	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return end
}
