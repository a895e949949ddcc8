package reconstruct

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

func TestReconstruct(t *testing.T) {
	t.Run("Should assign consecutive offsets without overlap", func(t *testing.T) {
		got, err := Reconstruct([]string{"aaaaa", "bbbbb", "ccccc"}, 0)
		require.NoError(t, err)

		want := []types.ReconstructedChunk{
			{ID: 1, StartIndex: 0, EndIndex: 5, Text: "aaaaa"},
			{ID: 2, StartIndex: 5, EndIndex: 10, Text: "bbbbb"},
			{ID: 3, StartIndex: 10, EndIndex: 15, Text: "ccccc"},
		}
		assert.Equal(t, want, got)
	})

	t.Run("Should step back by the overlap", func(t *testing.T) {
		got, err := Reconstruct([]string{"aaaaab", "abbbbb"}, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, 0, got[0].StartIndex)
		assert.Equal(t, 6, got[0].EndIndex)
		assert.Equal(t, 2, got[0].OverlapWithNext)
		assert.Equal(t, 4, got[1].StartIndex)
		assert.Equal(t, 10, got[1].EndIndex)
		assert.Equal(t, 0, got[1].OverlapWithNext)
	})

	t.Run("Should count runes not bytes", func(t *testing.T) {
		got, err := Reconstruct([]string{"héllo", "lo wörld"}, 2)
		require.NoError(t, err)

		assert.Equal(t, 5, got[0].EndIndex)
		assert.Equal(t, 3, got[1].StartIndex)
		assert.Equal(t, 11, got[1].EndIndex)
		assert.NoError(t, Verify(got, "héllo wörld"))
	})

	t.Run("Should clamp overlap to the shorter neighbour", func(t *testing.T) {
		got, err := Reconstruct([]string{"abcdef", "ef"}, 4)
		require.NoError(t, err)

		assert.Equal(t, 2, got[0].OverlapWithNext)
		assert.Equal(t, 4, got[1].StartIndex)
	})

	t.Run("Should return nothing for no chunks", func(t *testing.T) {
		got, err := Reconstruct(nil, 3)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Should reject a negative overlap", func(t *testing.T) {
		_, err := Reconstruct([]string{"a"}, -1)
		assert.ErrorIs(t, err, chunking.ErrInvalidParameter)
	})
}

func TestVerify(t *testing.T) {
	t.Run("Should accept chunks that tile the text", func(t *testing.T) {
		rc, err := Reconstruct([]string{"aaaaab", "abbbbb"}, 2)
		require.NoError(t, err)
		assert.NoError(t, Verify(rc, "aaaaabbbbb"))
	})

	t.Run("Should accept empty text with no chunks", func(t *testing.T) {
		assert.NoError(t, Verify(nil, ""))
	})

	t.Run("Should flag missing chunks", func(t *testing.T) {
		assert.ErrorIs(t, Verify(nil, "text"), ErrReconstructionMismatch)
	})

	t.Run("Should flag a short final end index", func(t *testing.T) {
		rc, err := Reconstruct([]string{"aaaaa", "bbbbb"}, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, Verify(rc, "aaaaabbbbbccccc"), ErrReconstructionMismatch)
	})

	t.Run("Should flag trimmed chunks", func(t *testing.T) {
		rc, err := Reconstruct([]string{"alpha", "beta"}, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, Verify(rc, "alpha\n\nbeta"), ErrReconstructionMismatch)
	})

	t.Run("Should flag an overlap the splitter did not produce", func(t *testing.T) {
		rc, err := Reconstruct([]string{"aaaaa", "bbbbb"}, 1)
		require.NoError(t, err)
		assert.ErrorIs(t, Verify(rc, "aaaaabbbbb"), ErrReconstructionMismatch)
	})
}

func TestReconstruct_SplitterOutput(t *testing.T) {
	text := strings.Repeat("One sentence here. Another one there!\n", 12) + "\n\nTail paragraph?"

	for _, splitter := range []types.SplitterKind{types.SplitterFixed, types.SplitterRecursive} {
		for _, size := range []int{3, 10, 33, 120} {
			for _, overlap := range []int{0, 1, size / 2, size - 1} {
				params := types.Params{ChunkSize: size, ChunkOverlap: overlap, Splitter: splitter}
				chunks, err := chunking.ComputeChunks(text, params)
				require.NoError(t, err)

				rc, err := Reconstruct(chunks, overlap)
				require.NoError(t, err)
				require.NoError(t, Verify(rc, text), "%s size=%d overlap=%d", splitter, size, overlap)

				for i := 1; i < len(rc); i++ {
					assert.GreaterOrEqual(t, rc[i].StartIndex, rc[i-1].StartIndex)
				}
			}
		}
	}
}
