// Package highlight renders reconstructed chunks as marked-up text with unique and
// overlap spans, and counts chunk cut points that split a paragraph
package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// Markup classes understood by rendering layers
const (
	UniqueClassPrefix = "unique-span-"
	OverlapClass      = "overlap-span"
)

// Palette holds the background colors for unique spans. The N in unique-span-N
// indexes this slice.
var Palette = []string{
	"#f8c4b4", // salmon
	"#f9e2ae", // sand
	"#bce4a7", // sage
	"#a8d8ea", // sky
	"#c9b6e4", // lavender
	"#f6c6ea", // pink
	"#b5ead7", // mint
	"#ffdac1", // peach
}

// OverlapColor is the background for overlap spans
const OverlapColor = "#ffe066"

// Render builds the highlight markup for chunks over originalText.
// Concatenating the text of every span reproduces originalText when the chunks tile it.
func Render(chunks []types.ReconstructedChunk, originalText string) types.Highlight {
	if len(chunks) == 0 {
		return types.Highlight{}
	}

	var sb strings.Builder
	prevOverlap := 0
	for i, c := range chunks {
		unique, overlap := Segments(c, prevOverlap)
		if unique != "" {
			fmt.Fprintf(&sb, `<span class="%s%d">%s</span>`, UniqueClassPrefix, i%len(Palette), html.EscapeString(unique))
		}
		if overlap != "" {
			fmt.Fprintf(&sb, `<span class="%s">%s</span>`, OverlapClass, html.EscapeString(overlap))
		}
		prevOverlap = c.OverlapWithNext
	}

	return types.Highlight{
		Markup:                sb.String(),
		BoundaryMismatchCount: CountBoundaryMismatches(chunks, originalText),
	}
}

// Segments splits a chunk into its unique part and its trailing overlap with the next
// chunk. prevOverlap runes at the start were already shown as the previous overlap.
func Segments(c types.ReconstructedChunk, prevOverlap int) (unique, overlap string) {
	runes := []rune(c.Text)
	start := min(max(prevOverlap, 0), len(runes))
	end := max(len(runes)-c.OverlapWithNext, start)
	return string(runes[start:end]), string(runes[end:])
}

// CountBoundaryMismatches counts chunks whose cut point does not fall on a
// paragraph-ending signal in originalText
func CountBoundaryMismatches(chunks []types.ReconstructedChunk, originalText string) int {
	runes := []rune(originalText)
	count := 0
	for _, c := range chunks {
		if IsMismatch(runes, c.EndIndex) {
			count++
		}
	}
	return count
}

// IsMismatch reports whether a cut at pos breaks a paragraph. End of text, a line
// break and the start of a period-then-newline pair are clean cut points.
func IsMismatch(runes []rune, pos int) bool {
	if pos >= len(runes) || pos < 0 {
		return false
	}
	switch runes[pos] {
	case '\n', '\r':
		return false
	case '.':
		return pos+1 >= len(runes) || runes[pos+1] != '\n'
	}
	return true
}

// StyleSheet returns CSS for the markup classes
func StyleSheet() string {
	var sb strings.Builder
	for i, color := range Palette {
		fmt.Fprintf(&sb, ".%s%d { background-color: %s; }\n", UniqueClassPrefix, i, color)
	}
	fmt.Fprintf(&sb, ".%s { background-color: %s; font-weight: bold; }\n", OverlapClass, OverlapColor)
	return sb.String()
}
