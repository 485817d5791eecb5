package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/featurizer/internal/textnorm"
)

// Config holds the configuration for the featurizer service and CLI
type Config struct {
	Featurizer FeaturizerConfig `toml:"featurizer"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// FeaturizerConfig controls normalization and vocabulary size
type FeaturizerConfig struct {
	// Normalizers is a comma separated textnorm pipeline, applied in order
	Normalizers   string `toml:"normalizers"`
	Transliterate bool   `toml:"transliterate"`
	// VocabLimit keeps the top-K ranked words; 0 keeps all
	VocabLimit int `toml:"vocab_limit"`
}

// ServerConfig holds HTTP wrapper configuration
type ServerConfig struct {
	Addr        string        `toml:"addr"`
	DataDir     string        `toml:"data_dir"`
	ReadTimeout time.Duration `toml:"-"` // env only
	SearchTopK  int           `toml:"search_top_k"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Featurizer: FeaturizerConfig{
			Normalizers:   GetStringEnv("FEATURIZER_NORMALIZERS", "lower,url,tags,alphanum"),
			Transliterate: GetBoolEnv("FEATURIZER_TRANSLITERATE", true),
			VocabLimit:    GetIntEnv("FEATURIZER_VOCAB_LIMIT", 0),
		},
		Server: ServerConfig{
			Addr:        GetStringEnv("SERVER_ADDR", ":8080"),
			DataDir:     GetStringEnv("SERVER_DATA_DIR", "./data"),
			ReadTimeout: GetDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			SearchTopK:  GetIntEnv("SERVER_SEARCH_TOP_K", 5),
		},
		Log: LogConfig{
			Level: GetStringEnv("LOG_LEVEL", "info"),
		},
	}
}

// LoadFile loads env defaults, overlays the TOML file at path and validates
// the result
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Featurizer.VocabLimit < 0 {
		errs = append(errs, fmt.Errorf("featurizer.vocab_limit must be >= 0, got %d", c.Featurizer.VocabLimit))
	}
	if _, err := c.Pipeline(); err != nil {
		errs = append(errs, fmt.Errorf("featurizer.normalizers: %w", err))
	}
	if c.Server.SearchTopK <= 0 {
		errs = append(errs, fmt.Errorf("server.search_top_k must be > 0, got %d", c.Server.SearchTopK))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Pipeline builds the configured normalizer pipeline. Transliteration, when
// enabled, runs first so later steps see ASCII text.
func (c *Config) Pipeline() (textnorm.Pipeline, error) {
	names := c.Featurizer.Normalizers
	if c.Featurizer.Transliterate {
		names = "translit," + names
	}
	return textnorm.ParsePipeline(names)
}

// LogLevel returns the configured level, falling back to info
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
