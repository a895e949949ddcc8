// Package reconstruct maps raw chunk strings back onto offsets in the source text
package reconstruct

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// ErrReconstructionMismatch signals that chunk offsets do not cover the source text.
// It points at a splitter fault and is never recoverable.
var ErrReconstructionMismatch = errors.New("reconstruction mismatch")

// Reconstruct assigns rune offsets to chunks in a single pass.
// Every chunk but the last overlaps its successor by overlap runes. An overlap larger
// than either neighbour is clamped to the shorter one so offsets never go backwards.
func Reconstruct(chunks []string, overlap int) ([]types.ReconstructedChunk, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap cannot be negative, got %d", chunking.ErrInvalidParameter, overlap)
	}

	out := make([]types.ReconstructedChunk, 0, len(chunks))
	start := 0

	for i, text := range chunks {
		n := utf8.RuneCountInString(text)
		rc := types.ReconstructedChunk{
			ID:         i + 1,
			StartIndex: start,
			EndIndex:   start + n,
			Text:       text,
		}
		if i < len(chunks)-1 {
			next := utf8.RuneCountInString(chunks[i+1])
			rc.OverlapWithNext = min(overlap, n, next)
		}
		out = append(out, rc)

		start = rc.EndIndex - rc.OverlapWithNext
	}

	return out, nil
}

// Verify checks that reconstructed chunks tile text exactly: each chunk equals the
// source substring at its offsets and the last one ends at the text length.
func Verify(chunks []types.ReconstructedChunk, text string) error {
	runes := []rune(text)
	if len(chunks) == 0 {
		if len(runes) != 0 {
			return fmt.Errorf("%w: no chunks for %d characters of text", ErrReconstructionMismatch, len(runes))
		}
		return nil
	}

	for i, c := range chunks {
		if c.StartIndex < 0 || c.EndIndex > len(runes) || c.StartIndex > c.EndIndex {
			return fmt.Errorf("%w: chunk %d offsets [%d, %d) outside text of length %d",
				ErrReconstructionMismatch, c.ID, c.StartIndex, c.EndIndex, len(runes))
		}
		if string(runes[c.StartIndex:c.EndIndex]) != c.Text {
			return fmt.Errorf("%w: chunk %d does not match text at [%d, %d)",
				ErrReconstructionMismatch, c.ID, c.StartIndex, c.EndIndex)
		}
		if i == 0 && c.StartIndex != 0 {
			return fmt.Errorf("%w: first chunk starts at %d", ErrReconstructionMismatch, c.StartIndex)
		}
	}

	if end := chunks[len(chunks)-1].EndIndex; end != len(runes) {
		return fmt.Errorf("%w: final end index %d, text length %d", ErrReconstructionMismatch, end, len(runes))
	}
	return nil
}
