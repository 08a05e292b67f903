// Package config provides configuration loading for contentd.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a configuration value that cannot be used.
// Startup fails fast on it, before the server accepts requests.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration for the contentd daemon.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Generator  GeneratorConfig  `koanf:"generator"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Store      StoreConfig      `koanf:"store"`
	Knowledge  KnowledgeConfig  `koanf:"knowledge"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// OpenAIConfig holds credentials for the OpenAI-compatible endpoint used by
// both the text generator and the embedder.
type OpenAIConfig struct {
	// APIKey authenticates against the endpoint. Required.
	// Environment: OPENAI_API_KEY.
	APIKey Secret `koanf:"api_key"`

	// BaseURL is the API base URL. Defaults to the public OpenAI API.
	BaseURL string `koanf:"base_url"`
}

// GeneratorConfig holds text generation settings.
type GeneratorConfig struct {
	// Model is the chat completion model.
	Model string `koanf:"model"`

	// Temperature controls sampling randomness.
	Temperature float64 `koanf:"temperature"`

	// RatePerMinute caps generation calls to the upstream API.
	// Zero disables the limiter.
	RatePerMinute int `koanf:"rate_per_minute"`
}

// EmbeddingsConfig holds embedding settings.
type EmbeddingsConfig struct {
	// Model is the embedding model.
	Model string `koanf:"model"`

	// VectorSize must match the model's output dimension.
	VectorSize int `koanf:"vector_size"`
}

// StoreConfig holds output store persistence settings.
type StoreConfig struct {
	// Path is the directory holding the vector database and the output table.
	Path string `koanf:"path"`
}

// KnowledgeConfig holds knowledge corpus ingestion settings.
type KnowledgeConfig struct {
	// BrochurePath is the brand brochure PDF. Required for ingest.
	BrochurePath string `koanf:"brochure_path"`

	// LinksPath is an optional JSON array of reference documents.
	LinksPath string `koanf:"links_path"`

	// CompanyURL is the brand website to scrape. Optional; fetch failures
	// are logged, not fatal.
	CompanyURL string `koanf:"company_url"`

	// ChunkSize and ChunkOverlap control document splitting (characters).
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`

	// RetrievalK is how many background documents context assembly fetches.
	RetrievalK int `koanf:"retrieval_k"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// applyDefaults fills unset fields with production defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-4o-mini"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}
	if cfg.Generator.RatePerMinute == 0 {
		cfg.Generator.RatePerMinute = 60
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "text-embedding-3-small"
	}
	if cfg.Embeddings.VectorSize == 0 {
		cfg.Embeddings.VectorSize = 1536
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.local/share/contentd"
	}
	if cfg.Knowledge.ChunkSize == 0 {
		cfg.Knowledge.ChunkSize = 500
	}
	if cfg.Knowledge.ChunkOverlap == 0 {
		cfg.Knowledge.ChunkOverlap = 50
	}
	if cfg.Knowledge.RetrievalK == 0 {
		cfg.Knowledge.RetrievalK = 3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for values the daemon cannot start with.
func (c *Config) Validate() error {
	if !c.OpenAI.APIKey.IsSet() {
		return fmt.Errorf("%w: openai.api_key is required (set OPENAI_API_KEY)", ErrInvalidConfig)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be in 1-65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		return fmt.Errorf("%w: generator.temperature must be in [0,2], got %g", ErrInvalidConfig, c.Generator.Temperature)
	}
	if c.Embeddings.VectorSize <= 0 {
		return fmt.Errorf("%w: embeddings.vector_size must be positive", ErrInvalidConfig)
	}
	if c.Knowledge.ChunkSize <= 0 {
		return fmt.Errorf("%w: knowledge.chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Knowledge.ChunkOverlap < 0 || c.Knowledge.ChunkOverlap >= c.Knowledge.ChunkSize {
		return fmt.Errorf("%w: knowledge.chunk_overlap must be in [0, chunk_size)", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format must be json or console, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
