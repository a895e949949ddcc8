package stats

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// DefaultEncoding is used when no encoding or model is configured
const DefaultEncoding = "cl100k_base"

// TokenCounter counts model tokens in a text
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
	Encoding() string
}

// TiktokenCounter counts tokens with a tiktoken BPE encoding
type TiktokenCounter struct {
	encoding string
	mu       sync.Mutex
	tke      *tiktoken.Tiktoken
}

// NewTiktokenCounter loads an encoding by name, or by model name when no encoding
// of that name exists
func NewTiktokenCounter(encodingOrModel string) (*TiktokenCounter, error) {
	if encodingOrModel == "" {
		encodingOrModel = DefaultEncoding
	}

	tke, err := tiktoken.GetEncoding(encodingOrModel)
	if err != nil {
		var modelErr error
		tke, modelErr = tiktoken.EncodingForModel(encodingOrModel)
		if modelErr != nil {
			return nil, fmt.Errorf("failed to load token encoding %q: %w", encodingOrModel, err)
		}
	}

	return &TiktokenCounter{encoding: encodingOrModel, tke: tke}, nil
}

// CountTokens implements TokenCounter
func (c *TiktokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tke.Encode(text, nil, nil)), nil
}

// Encoding implements TokenCounter
func (c *TiktokenCounter) Encoding() string {
	return c.encoding
}

// CountTokens computes token statistics for chunks. No chunks yields zeros.
func CountTokens(ctx context.Context, counter TokenCounter, chunks []string) (*types.TokenStatistics, error) {
	ts := &types.TokenStatistics{Encoding: counter.Encoding()}
	if len(chunks) == 0 {
		return ts, nil
	}

	ts.Min = math.MaxInt
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := counter.CountTokens(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to count tokens in chunk %d: %w", i+1, err)
		}
		ts.Total += n
		ts.Min = min(ts.Min, n)
		ts.Max = max(ts.Max, n)
	}
	return ts, nil
}
