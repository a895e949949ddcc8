// Package config loads chunkviz configuration from YAML and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CHUNKVIZ_"

// Config is the full chunkviz configuration
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig holds chunking defaults and pipeline limits
type EngineConfig struct {
	ChunkSize      int                `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap   int                `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	Splitter       types.SplitterKind `yaml:"splitter" validate:"oneof=fixed recursive"`
	ContentType    types.ContentType  `yaml:"content_type" validate:"required"`
	MaxInputLength int                `yaml:"max_input_length" validate:"gt=0"`
	CacheSize      int                `yaml:"cache_size" validate:"gte=0"`
	TokenEncoding  string             `yaml:"token_encoding"` // empty disables token statistics
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gt=0,lte=65535"`
	EnableMCP       bool          `yaml:"enable_mcp"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns sensible defaults
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			ChunkSize:      500,
			ChunkOverlap:   50,
			Splitter:       types.SplitterRecursive,
			ContentType:    types.ContentTypeText,
			MaxInputLength: 1_000_000,
			CacheSize:      128,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            3456,
			EnableMCP:       true,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := chunking.ValidateParams(c.Params()); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	c.Engine.ChunkSize, err = getEnvInt("CHUNK_SIZE", c.Engine.ChunkSize)
	if err != nil {
		return err
	}
	c.Engine.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", c.Engine.ChunkOverlap)
	if err != nil {
		return err
	}
	c.Engine.MaxInputLength, err = getEnvInt("MAX_INPUT_LENGTH", c.Engine.MaxInputLength)
	if err != nil {
		return err
	}
	c.Engine.CacheSize, err = getEnvInt("CACHE_SIZE", c.Engine.CacheSize)
	if err != nil {
		return err
	}
	c.Server.Port, err = getEnvInt("PORT", c.Server.Port)
	if err != nil {
		return err
	}

	c.Engine.Splitter = types.SplitterKind(getEnvOrDefault("SPLITTER", string(c.Engine.Splitter)))
	c.Engine.ContentType = types.ContentType(getEnvOrDefault("CONTENT_TYPE", string(c.Engine.ContentType)))
	c.Engine.TokenEncoding = getEnvOrDefault("TOKEN_ENCODING", c.Engine.TokenEncoding)
	c.Server.Host = getEnvOrDefault("HOST", c.Server.Host)
	c.Log.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", c.Log.Level))

	if v := os.Getenv(EnvPrefix + "LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_JSON: %w", EnvPrefix, err)
		}
		c.Log.JSON = b
	}
	return nil
}

// Params returns the configured chunking defaults
func (c *Config) Params() types.Params {
	return types.Params{
		ChunkSize:    c.Engine.ChunkSize,
		ChunkOverlap: c.Engine.ChunkOverlap,
		Splitter:     c.Engine.Splitter,
		ContentType:  c.Engine.ContentType,
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}
