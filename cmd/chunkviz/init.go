package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/shivavenkatesh/chunkviz/internal/config"
	"github.com/shivavenkatesh/chunkviz/internal/logger"
	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/internal/stats"
)

const defaultConfigFile = "chunkviz.yaml"

// loadConfig reads the config file and applies global flag overrides
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = defaultConfigFile
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// initService loads configuration, sets up logging and creates the pipeline service
func initService() (pipeline.Service, *config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	log, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	var counter stats.TokenCounter
	if cfg.Engine.TokenEncoding != "" {
		tc, err := stats.NewTiktokenCounter(cfg.Engine.TokenEncoding)
		if err != nil {
			log.Warn().Err(err).Msg("token statistics disabled")
		} else {
			counter = tc
		}
	}

	svc, err := pipeline.NewService(pipeline.Config{
		Defaults:       cfg.Params(),
		MaxInputLength: cfg.Engine.MaxInputLength,
		CacheSize:      cfg.Engine.CacheSize,
	}, counter)
	if err != nil {
		return nil, nil, log, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	log.Debug().
		Str("splitter", string(cfg.Engine.Splitter)).
		Int("chunk_size", cfg.Engine.ChunkSize).
		Int("chunk_overlap", cfg.Engine.ChunkOverlap).
		Msg("pipeline ready")

	return svc, cfg, log, nil
}
