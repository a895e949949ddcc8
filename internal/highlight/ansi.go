package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

var (
	uniqueStyles = func() []lipgloss.Style {
		styles := make([]lipgloss.Style, len(Palette))
		for i, color := range Palette {
			styles[i] = lipgloss.NewStyle().
				Background(lipgloss.Color(color)).
				Foreground(lipgloss.Color("#1a1a1a")).
				TabWidth(lipgloss.NoTabConversion)
		}
		return styles
	}()

	overlapStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(OverlapColor)).
			Foreground(lipgloss.Color("#1a1a1a")).
			Bold(true).
			Underline(true).
			TabWidth(lipgloss.NoTabConversion)
)

// RenderANSI renders chunks for a terminal using the same palette as the HTML markup
func RenderANSI(chunks []types.ReconstructedChunk) string {
	var sb strings.Builder
	prevOverlap := 0
	for i, c := range chunks {
		unique, overlap := Segments(c, prevOverlap)
		writeStyled(&sb, uniqueStyles[i%len(uniqueStyles)], unique)
		writeStyled(&sb, overlapStyle, overlap)
		prevOverlap = c.OverlapWithNext
	}
	return sb.String()
}

// writeStyled styles each line separately; lipgloss pads multi-line blocks to a common width
func writeStyled(sb *strings.Builder, style lipgloss.Style, s string) {
	if s == "" {
		return
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if line != "" {
			sb.WriteString(style.Render(line))
		}
	}
}
