package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivavenkatesh/chunkviz/internal/cache"
	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/stats"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// Service orchestrates pipeline runs for the CLI, HTTP and MCP surfaces
type Service interface {
	// Compute runs the pipeline on a request, truncating oversized input
	Compute(ctx context.Context, req types.ComputeRequest) (*types.Result, error)

	// Separators returns the separator set for a content type
	Separators(ct types.ContentType) ([]string, error)

	// ContentTypes lists the known content types
	ContentTypes() []types.ContentType

	// Defaults returns the chunking parameters used when a request leaves them unset
	Defaults() types.Params

	// CacheStats returns result cache statistics
	CacheStats() cache.Stats
}

// Config configures the pipeline service
type Config struct {
	Defaults       types.Params // Used when a request has no chunk size
	MaxInputLength int          // Longer input is truncated, in runes
	CacheSize      int          // Number of cached results, 0 disables caching
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Defaults: types.Params{
			ChunkSize:    500,
			ChunkOverlap: 50,
			Splitter:     chunking.DefaultSplitter,
			ContentType:  chunking.DefaultContentType,
		},
		MaxInputLength: 1_000_000,
		CacheSize:      128,
	}
}

// serviceImpl implements the Service interface
type serviceImpl struct {
	config  Config
	cache   *cache.ResultCache
	counter stats.TokenCounter
}

// NewService creates a pipeline service. counter may be nil to skip token statistics.
func NewService(cfg Config, counter stats.TokenCounter) (Service, error) {
	def := DefaultConfig()
	if cfg.Defaults.ChunkSize <= 0 {
		cfg.Defaults = def.Defaults
	}
	cfg.Defaults = chunking.NormalizeParams(cfg.Defaults)
	if err := chunking.ValidateParams(cfg.Defaults); err != nil {
		return nil, fmt.Errorf("invalid default params: %w", err)
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = def.MaxInputLength
	}

	s := &serviceImpl{
		config:  cfg,
		counter: counter,
	}
	if cfg.CacheSize > 0 {
		c, err := cache.NewResultCache(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// Compute runs the pipeline on a request
func (s *serviceImpl) Compute(ctx context.Context, req types.ComputeRequest) (*types.Result, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := s.resolveParams(req.Params)

	if s.cache != nil {
		if res, ok := s.cache.Get(req.Text, params); ok {
			logger.Debug().Str("splitter", string(params.Splitter)).Msg("result cache hit")
			return res, nil
		}
	}

	text, truncated := Truncate(req.Text, s.config.MaxInputLength)
	if truncated {
		logger.Warn().
			Int("limit", s.config.MaxInputLength).
			Msg("input exceeds maximum length, truncating")
	}

	res, err := Run(text, params)
	if err != nil {
		if !errors.Is(err, chunking.ErrInvalidParameter) {
			logger.Error().Err(err).Msg("pipeline failed")
		}
		return nil, err
	}

	if truncated {
		res.Truncated = true
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("input truncated to %d characters", s.config.MaxInputLength))
	}

	if s.counter != nil {
		ts, err := stats.CountTokens(ctx, s.counter, res.Chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to count tokens: %w", err)
		}
		res.Statistics.Tokens = ts
	}

	if s.cache != nil {
		s.cache.Put(req.Text, params, res)
	}

	logger.Debug().
		Str("splitter", string(params.Splitter)).
		Str("content_type", string(params.ContentType)).
		Int("chunk_size", params.ChunkSize).
		Int("chunk_overlap", params.ChunkOverlap).
		Int("chunks", res.Statistics.Count).
		Int("mismatches", res.Highlight.BoundaryMismatchCount).
		Dur("took", time.Since(start)).
		Msg("computed chunks")

	return res, nil
}

// resolveParams fills unset fields from the configured defaults. A zero chunk
// size takes both the default size and overlap.
func (s *serviceImpl) resolveParams(p types.Params) types.Params {
	if p.ChunkSize == 0 {
		p.ChunkSize = s.config.Defaults.ChunkSize
		if p.ChunkOverlap == 0 {
			p.ChunkOverlap = s.config.Defaults.ChunkOverlap
		}
	}
	if p.Splitter == "" {
		p.Splitter = s.config.Defaults.Splitter
	}
	if p.ContentType == "" {
		p.ContentType = s.config.Defaults.ContentType
	}
	return p
}

// Separators returns the separator set for a content type
func (s *serviceImpl) Separators(ct types.ContentType) ([]string, error) {
	if ct == "" {
		ct = s.config.Defaults.ContentType
	}
	return chunking.Separators(ct)
}

// ContentTypes lists the known content types
func (s *serviceImpl) ContentTypes() []types.ContentType {
	return chunking.ContentTypes()
}

// Defaults returns the default chunking parameters
func (s *serviceImpl) Defaults() types.Params {
	return s.config.Defaults
}

// CacheStats returns result cache statistics
func (s *serviceImpl) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}
