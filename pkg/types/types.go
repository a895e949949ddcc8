// Package types defines the core data structures for chunkviz
package types

// SplitterKind selects the chunking algorithm
type SplitterKind string

const (
	SplitterFixed     SplitterKind = "fixed"     // Fixed-width windows, no structure awareness
	SplitterRecursive SplitterKind = "recursive" // Delimiter-recursive with separator policy
)

// ContentType keys the separator policy
type ContentType string

const ContentTypeText ContentType = "text"

// Params configures a single chunking run
type Params struct {
	ChunkSize    int          `json:"chunk_size"`
	ChunkOverlap int          `json:"chunk_overlap"`
	Splitter     SplitterKind `json:"splitter,omitempty"`
	ContentType  ContentType  `json:"content_type,omitempty"`
}

// ReconstructedChunk is a chunk mapped back onto offsets in the original text.
// Offsets count runes, EndIndex is exclusive.
type ReconstructedChunk struct {
	ID              int    `json:"id"`
	StartIndex      int    `json:"start_index"`
	EndIndex        int    `json:"end_index"`
	Text            string `json:"text"`
	OverlapWithNext int    `json:"overlap_with_next"`
}

// Highlight is the rendered markup for a chunk sequence
type Highlight struct {
	Markup                string `json:"markup"`
	BoundaryMismatchCount int    `json:"boundary_mismatch_count"`
}

// Statistics summarizes chunk sizes
type Statistics struct {
	Count        int              `json:"count"`
	TotalChars   int              `json:"total_chars"`
	Average      float64          `json:"average"`
	Min          int              `json:"min"`
	Max          int              `json:"max"`
	RatioPercent int              `json:"ratio_percent"`
	Tokens       *TokenStatistics `json:"tokens,omitempty"`
}

// TokenStatistics summarizes chunk sizes in model tokens
type TokenStatistics struct {
	Encoding string `json:"encoding"`
	Total    int    `json:"total"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

// ComputeRequest is the request payload for a pipeline run
type ComputeRequest struct {
	Text   string `json:"text"`
	Params Params `json:"params"`
}

// Result is everything derived from one (text, params) snapshot
type Result struct {
	Params        Params               `json:"params"`
	InputLength   int                  `json:"input_length"`
	Truncated     bool                 `json:"truncated"`
	Warnings      []string             `json:"warnings,omitempty"`
	Chunks        []string             `json:"chunks"`
	Reconstructed []ReconstructedChunk `json:"reconstructed"`
	Highlight     Highlight            `json:"highlight"`
	Statistics    Statistics           `json:"statistics"`
}
