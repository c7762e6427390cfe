// Package config provides configuration loading for ragstore.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "RAGSTORE_"

// Config holds every setting the ingestion and retrieval core consumes.
// Values are loaded once at process start.
type Config struct {
	// DataRoot is the directory holding one subdirectory per collection.
	DataRoot string `koanf:"data_root"`
	// KeywordBankPath is the keyword databank file location.
	KeywordBankPath string `koanf:"keyword_bank_path"`

	EmbeddingProvider string `koanf:"embedding_provider"`
	EmbeddingModel    string `koanf:"embedding_model"`
	OllamaBaseURL     string `koanf:"ollama_base_url"`

	BatchSize        int `koanf:"batch_size"`
	MaxBatchMemoryMB int `koanf:"max_batch_memory_mb"`
	MaxWorkers       int `koanf:"max_workers"`
	ChunkSize        int `koanf:"chunk_size"`
	ChunkOverlap     int `koanf:"chunk_overlap"`

	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataRoot:          "data/collections",
		KeywordBankPath:   "data/keywords.json",
		EmbeddingProvider: "openai",
		EmbeddingModel:    "text-embedding-3-small",
		BatchSize:         20,
		MaxBatchMemoryMB:  50,
		MaxWorkers:        8,
		ChunkSize:         800,
		ChunkOverlap:      200,
		LogLevel:          "info",
	}
}

// Load layers configuration: defaults, then an optional YAML file, then
// RAGSTORE_* environment variables (RAGSTORE_BATCH_SIZE -> batch_size).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("config: data_root is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("config: max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("config: chunk_overlap %d must be smaller than chunk_size %d", c.ChunkOverlap, c.ChunkSize)
	}
	switch c.EmbeddingProvider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("config: unknown embedding_provider %q", c.EmbeddingProvider)
	}
	return nil
}
