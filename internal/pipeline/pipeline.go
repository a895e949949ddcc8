// Package pipeline runs the full chunk visualization: split, reconstruct,
// verify, highlight and summarize
package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/highlight"
	"github.com/shivavenkatesh/chunkviz/internal/reconstruct"
	"github.com/shivavenkatesh/chunkviz/internal/stats"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// Run derives every view of text under params. It has no side effects, and a
// reconstruction mismatch aborts it.
func Run(text string, params types.Params) (*types.Result, error) {
	params = chunking.NormalizeParams(params)

	chunks, err := chunking.ComputeChunks(text, params)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		chunks = []string{}
	}

	rc, err := reconstruct.Reconstruct(chunks, params.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if err := reconstruct.Verify(rc, text); err != nil {
		return nil, fmt.Errorf("%s splitter produced inconsistent chunks: %w", params.Splitter, err)
	}

	return &types.Result{
		Params:        params,
		InputLength:   utf8.RuneCountInString(text),
		Chunks:        chunks,
		Reconstructed: rc,
		Highlight:     highlight.Render(rc, text),
		Statistics:    stats.Compute(chunks),
	}, nil
}

// Truncate cuts text to at most limit runes and reports whether it did
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	i, n := 0, 0
	for i = range text {
		if n == limit {
			break
		}
		n++
	}
	return text[:i], true
}
