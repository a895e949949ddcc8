package chunking

import (
	"strings"
	"unicode/utf8"
)

// RecursiveOptions tunes the recursive splitter
type RecursiveOptions struct {
	// PreserveWhitespace keeps every original character so chunks can be mapped
	// back onto the source. When false, chunks are trimmed and blank ones dropped.
	PreserveWhitespace bool
}

// DefaultRecursiveOptions returns the lossless configuration
func DefaultRecursiveOptions() RecursiveOptions {
	return RecursiveOptions{PreserveWhitespace: true}
}

// RecursiveChunker splits on the coarsest separator present, recursing into
// fragments that are still too large, then merges fragments up to the size budget
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
	opts       RecursiveOptions
}

// NewRecursiveChunker creates a recursive chunker over an ordered separator set
func NewRecursiveChunker(size, overlap int, separators []string, opts RecursiveOptions) (*RecursiveChunker, error) {
	if err := ValidateSize(size, overlap); err != nil {
		return nil, err
	}
	seps := make([]string, len(separators))
	copy(seps, separators)
	return &RecursiveChunker{
		size:       size,
		overlap:    overlap,
		separators: seps,
		opts:       opts,
	}, nil
}

// Split implements Chunker
func (c *RecursiveChunker) Split(text string) ([]string, error) {
	return SplitRecursive(text, c.size, c.overlap, c.separators, c.opts)
}

// SplitRecursive runs the recursive delimiter splitter.
// With PreserveWhitespace, chunk i+1 always starts with the last overlap runes of chunk i.
func SplitRecursive(text string, size, overlap int, separators []string, opts RecursiveOptions) ([]string, error) {
	if err := ValidateSize(size, overlap); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	fragments := decompose(text, separators, size)
	chunks := mergeFragments(fragments, size, overlap)

	if !opts.PreserveWhitespace {
		chunks = trimChunks(chunks)
	}
	return chunks, nil
}

// decompose breaks text into fragments no longer than size, in document order.
// Concatenating the fragments yields text.
func decompose(text string, separators []string, size int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	sep, finer := pickSeparator(text, separators)
	if sep == "" {
		return splitRunes(text)
	}

	var out []string
	for _, frag := range splitKeepSeparator(text, sep) {
		if utf8.RuneCountInString(frag) > size {
			out = append(out, decompose(frag, finer, size)...)
			continue
		}
		out = append(out, frag)
	}
	return out
}

// pickSeparator returns the first separator occurring in text and the finer ones after it.
// Running out of separators falls back to character level.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeepSeparator splits on sep and attaches it to the start of the following fragment
func splitKeepSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	frags := make([]string, 0, len(parts))
	if parts[0] != "" {
		frags = append(frags, parts[0])
	}
	for _, p := range parts[1:] {
		frags = append(frags, sep+p)
	}
	return frags
}

func splitRunes(text string) []string {
	out := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

// mergeFragments greedily packs fragments into chunks of at most size runes.
// A closed chunk seeds the next buffer with its last overlap runes. A fragment that
// cannot fit next to the seed fills the current buffer up to size before closing.
func mergeFragments(fragments []string, size, overlap int) []string {
	var chunks []string
	buf := make([]rune, 0, size)
	fresh := false // buf holds runes beyond the overlap seed

	closeChunk := func() {
		chunks = append(chunks, string(buf))
		seed := buf[len(buf)-overlap:]
		next := make([]rune, 0, size)
		buf = append(next, seed...)
		fresh = false
	}

	for _, frag := range fragments {
		runes := []rune(frag)

		if len(buf)+len(runes) > size && fresh && len(buf) > overlap {
			closeChunk()
		}

		for len(buf)+len(runes) > size {
			take := size - len(buf)
			buf = append(buf, runes[:take]...)
			runes = runes[take:]
			closeChunk()
		}

		if len(runes) > 0 {
			buf = append(buf, runes...)
			fresh = true
		}
	}

	if fresh {
		chunks = append(chunks, string(buf))
	}
	return chunks
}

func trimChunks(chunks []string) []string {
	out := chunks[:0]
	for _, c := range chunks {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}
