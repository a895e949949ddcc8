package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

func TestRun(t *testing.T) {
	t.Run("Should compute every view for fixed-width chunks", func(t *testing.T) {
		res, err := Run("aaaaabbbbbccccc", types.Params{ChunkSize: 5, Splitter: types.SplitterFixed})
		require.NoError(t, err)

		assert.Equal(t, []string{"aaaaa", "bbbbb", "ccccc"}, res.Chunks)
		assert.Equal(t, types.Statistics{Count: 3, TotalChars: 15, Average: 5, Min: 5, Max: 5, RatioPercent: 100}, res.Statistics)
		require.Len(t, res.Reconstructed, 3)
		assert.Equal(t, 15, res.Reconstructed[2].EndIndex)
		assert.Equal(t, 15, res.InputLength)
		assert.Equal(t, types.ContentTypeText, res.Params.ContentType)
		assert.Contains(t, res.Highlight.Markup, `<span class="unique-span-2">ccccc</span>`)
	})

	t.Run("Should step back by the overlap", func(t *testing.T) {
		res, err := Run("aaaaabbbbb", types.Params{ChunkSize: 6, ChunkOverlap: 2, Splitter: types.SplitterFixed})
		require.NoError(t, err)

		assert.Equal(t, []string{"aaaaab", "abbbbb"}, res.Chunks)
		assert.Equal(t, 2, res.Reconstructed[0].OverlapWithNext)
		assert.Equal(t, 4, res.Reconstructed[1].StartIndex)
	})

	t.Run("Should return empty views for empty text", func(t *testing.T) {
		res, err := Run("", types.Params{ChunkSize: 10, ChunkOverlap: 3})
		require.NoError(t, err)

		assert.Empty(t, res.Chunks)
		assert.NotNil(t, res.Chunks)
		assert.Empty(t, res.Reconstructed)
		assert.Equal(t, types.Statistics{}, res.Statistics)
		assert.Empty(t, res.Highlight.Markup)
		assert.Zero(t, res.Highlight.BoundaryMismatchCount)
	})

	t.Run("Should reject invalid params before splitting", func(t *testing.T) {
		_, err := Run("text", types.Params{ChunkSize: 4, ChunkOverlap: 4})
		assert.ErrorIs(t, err, chunking.ErrInvalidParameter)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		text := strings.Repeat("Some prose. With sentences!\n\nAnd paragraphs?\n", 30)
		params := types.Params{ChunkSize: 45, ChunkOverlap: 10, ContentType: types.ContentTypeText}

		first, err := Run(text, params)
		require.NoError(t, err)
		second, err := Run(text, params)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestTruncate(t *testing.T) {
	got, truncated := Truncate("héllo wörld", 4)
	assert.True(t, truncated)
	assert.Equal(t, "héll", got)

	got, truncated = Truncate("short", 5)
	assert.False(t, truncated)
	assert.Equal(t, "short", got)

	got, truncated = Truncate("anything", 0)
	assert.False(t, truncated)
	assert.Equal(t, "anything", got)
}

type runeCounter struct{ calls int }

func (c *runeCounter) CountTokens(_ context.Context, text string) (int, error) {
	c.calls++
	return len([]rune(text)), nil
}

func (c *runeCounter) Encoding() string { return "runes" }

func TestService_Compute(t *testing.T) {
	ctx := context.Background()

	t.Run("Should fill unset params from defaults", func(t *testing.T) {
		svc, err := NewService(Config{
			Defaults: types.Params{ChunkSize: 8, ChunkOverlap: 2, Splitter: types.SplitterFixed},
		}, nil)
		require.NoError(t, err)

		res, err := svc.Compute(ctx, types.ComputeRequest{Text: "abcdefghijklmnop"})
		require.NoError(t, err)

		assert.Equal(t, types.Params{ChunkSize: 8, ChunkOverlap: 2, Splitter: types.SplitterFixed, ContentType: types.ContentTypeText}, res.Params)
		assert.Equal(t, []string{"abcdefgh", "ghijklmn", "mnop"}, res.Chunks)
	})

	t.Run("Should truncate oversized input with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		logCtx := zerolog.New(&buf).WithContext(ctx)

		svc, err := NewService(Config{MaxInputLength: 10}, nil)
		require.NoError(t, err)

		res, err := svc.Compute(logCtx, types.ComputeRequest{
			Text:   strings.Repeat("x", 25),
			Params: types.Params{ChunkSize: 4, Splitter: types.SplitterFixed},
		})
		require.NoError(t, err)

		assert.True(t, res.Truncated)
		assert.Len(t, res.Warnings, 1)
		assert.Equal(t, 10, res.InputLength)
		assert.Equal(t, 10, res.Statistics.TotalChars)
		assert.Contains(t, buf.String(), "truncating")
	})

	t.Run("Should return invalid parameter errors", func(t *testing.T) {
		svc, err := NewService(DefaultConfig(), nil)
		require.NoError(t, err)

		_, err = svc.Compute(ctx, types.ComputeRequest{Text: "x", Params: types.Params{ChunkSize: -1}})
		assert.ErrorIs(t, err, chunking.ErrInvalidParameter)

		_, err = svc.Compute(ctx, types.ComputeRequest{Text: "x", Params: types.Params{ChunkSize: 5, ContentType: "cobol"}})
		assert.ErrorIs(t, err, chunking.ErrUnknownContentType)
	})

	t.Run("Should serve repeated requests from the cache", func(t *testing.T) {
		counter := &runeCounter{}
		svc, err := NewService(DefaultConfig(), counter)
		require.NoError(t, err)

		req := types.ComputeRequest{Text: "cache me please", Params: types.Params{ChunkSize: 5, Splitter: types.SplitterFixed}}
		first, err := svc.Compute(ctx, req)
		require.NoError(t, err)
		second, err := svc.Compute(ctx, req)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 3, counter.calls)

		stats := svc.CacheStats()
		assert.EqualValues(t, 1, stats.Hits)
		assert.EqualValues(t, 1, stats.Misses)
		assert.Equal(t, 1, stats.Entries)
	})

	t.Run("Should attach token statistics", func(t *testing.T) {
		svc, err := NewService(Config{CacheSize: 0}, &runeCounter{})
		require.NoError(t, err)

		res, err := svc.Compute(ctx, types.ComputeRequest{Text: "aaaaabbbbbcc", Params: types.Params{ChunkSize: 5, Splitter: types.SplitterFixed}})
		require.NoError(t, err)

		require.NotNil(t, res.Statistics.Tokens)
		assert.Equal(t, types.TokenStatistics{Encoding: "runes", Total: 12, Min: 2, Max: 5}, *res.Statistics.Tokens)
	})

	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		svc, err := NewService(DefaultConfig(), nil)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = svc.Compute(cctx, types.ComputeRequest{Text: "x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_Separators(t *testing.T) {
	svc, err := NewService(Config{Defaults: types.Params{ChunkSize: 10, ContentType: "markdown"}}, nil)
	require.NoError(t, err)

	seps, err := svc.Separators("")
	require.NoError(t, err)
	assert.Equal(t, "\n# ", seps[0])

	_, err = svc.Separators("cobol")
	assert.ErrorIs(t, err, chunking.ErrUnknownContentType)

	assert.Contains(t, svc.ContentTypes(), types.ContentType("go"))
}

func TestNewService_InvalidDefaults(t *testing.T) {
	_, err := NewService(Config{Defaults: types.Params{ChunkSize: 5, ChunkOverlap: 9}}, nil)
	assert.ErrorIs(t, err, chunking.ErrInvalidParameter)
}
