package chunking

// FixedChunker cuts text into consecutive windows, ignoring structure
type FixedChunker struct {
	size    int
	overlap int
}

// NewFixedChunker creates a fixed-width chunker
func NewFixedChunker(size, overlap int) (*FixedChunker, error) {
	if err := ValidateSize(size, overlap); err != nil {
		return nil, err
	}
	return &FixedChunker{size: size, overlap: overlap}, nil
}

// Split implements Chunker
func (c *FixedChunker) Split(text string) ([]string, error) {
	return SplitFixed(text, c.size, c.overlap)
}

// SplitFixed takes windows [offset, offset+size) and advances by size-overlap.
// The window that reaches the end of the text is the last one.
func SplitFixed(text string, size, overlap int) ([]string, error) {
	if err := ValidateSize(size, overlap); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
