// Package chunking provides the fixed-width and delimiter-recursive text splitters
package chunking

import (
	"errors"
	"fmt"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

var (
	// ErrInvalidParameter is returned for chunk parameters that would corrupt offsets
	ErrInvalidParameter = errors.New("invalid chunking parameter")

	// ErrUnknownContentType is returned when no separator set exists for a content type
	ErrUnknownContentType = fmt.Errorf("%w: unknown content type", ErrInvalidParameter)
)

// Chunker splits text into an ordered sequence of raw chunk strings
type Chunker interface {
	// Split partitions text. Empty text yields no chunks.
	Split(text string) ([]string, error)
}

// Defaults used when a request leaves the splitter or content type empty
const (
	DefaultSplitter    = types.SplitterRecursive
	DefaultContentType = types.ContentTypeText
)

// NormalizeParams fills in the default splitter and content type
func NormalizeParams(p types.Params) types.Params {
	if p.Splitter == "" {
		p.Splitter = DefaultSplitter
	}
	if p.ContentType == "" {
		p.ContentType = DefaultContentType
	}
	return p
}

// ValidateSize checks 0 <= overlap < size
func ValidateSize(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be greater than 0, got %d", ErrInvalidParameter, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative, got %d", ErrInvalidParameter, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", ErrInvalidParameter, overlap, size)
	}
	return nil
}

// ValidateParams checks sizes, splitter kind and content type
func ValidateParams(p types.Params) error {
	if err := ValidateSize(p.ChunkSize, p.ChunkOverlap); err != nil {
		return err
	}
	switch p.Splitter {
	case types.SplitterFixed, types.SplitterRecursive:
	default:
		return fmt.Errorf("%w: unknown splitter %q", ErrInvalidParameter, p.Splitter)
	}
	if _, ok := separatorPolicy[p.ContentType]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownContentType, p.ContentType)
	}
	return nil
}

// New builds the chunker selected by params
func New(p types.Params) (Chunker, error) {
	p = NormalizeParams(p)
	if err := ValidateParams(p); err != nil {
		return nil, err
	}

	if p.Splitter == types.SplitterFixed {
		c, err := NewFixedChunker(p.ChunkSize, p.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	seps, err := Separators(p.ContentType)
	if err != nil {
		return nil, err
	}
	c, err := NewRecursiveChunker(p.ChunkSize, p.ChunkOverlap, seps, DefaultRecursiveOptions())
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ComputeChunks validates params and runs the selected splitter
func ComputeChunks(text string, p types.Params) ([]string, error) {
	c, err := New(p)
	if err != nil {
		return nil, err
	}
	return c.Split(text)
}
