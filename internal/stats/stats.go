// Package stats reduces a chunk list to size statistics
package stats

import (
	"math"
	"unicode/utf8"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// Compute summarizes chunk lengths in runes. No chunks yields all zeros.
func Compute(chunks []string) types.Statistics {
	if len(chunks) == 0 {
		return types.Statistics{}
	}

	s := types.Statistics{
		Count: len(chunks),
		Min:   math.MaxInt,
	}
	for _, c := range chunks {
		n := utf8.RuneCountInString(c)
		s.TotalChars += n
		s.Min = min(s.Min, n)
		s.Max = max(s.Max, n)
	}

	s.Average = float64(s.TotalChars) / float64(s.Count)
	s.RatioPercent = Ratio(s.Min, s.Max)
	return s
}

// Ratio returns round(min/max * 100), or 0 when max is 0
func Ratio(minLen, maxLen int) int {
	if maxLen == 0 {
		return 0
	}
	return int(math.Round(float64(minLen) / float64(maxLen) * 100))
}
