package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Point at a path that does not exist so only defaults apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8420, cfg.Server.Port)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.Model)
	assert.Equal(t, 0.3, cfg.Generator.Temperature)
	assert.Equal(t, 60, cfg.Generator.RatePerMinute)
	assert.Equal(t, "text-embedding-3-small", cfg.Embeddings.Model)
	assert.Equal(t, 1536, cfg.Embeddings.VectorSize)
	assert.Equal(t, 500, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 50, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 3, cfg.Knowledge.RetrievalK)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
generator:
  model: gpt-4o
  temperature: 0.7
knowledge:
  brochure_path: /data/brochure.pdf
  chunk_size: 300
logging:
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
	assert.Equal(t, 0.7, cfg.Generator.Temperature)
	assert.Equal(t, "/data/brochure.pdf", cfg.Knowledge.BrochurePath)
	assert.Equal(t, 300, cfg.Knowledge.ChunkSize)
	assert.Equal(t, "console", cfg.Logging.Format)

	// Unset fields still get defaults.
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
	assert.Equal(t, 50, cfg.Knowledge.ChunkOverlap)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
`)
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("OPENAI_API_KEY", "sk-test-123")
	t.Setenv("KNOWLEDGE_CHUNK_SIZE", "250")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "sk-test-123", cfg.OpenAI.APIKey.Value())
	assert.Equal(t, 250, cfg.Knowledge.ChunkSize)
}

func TestLoad_UnknownEnvSectionIgnored(t *testing.T) {
	t.Setenv("PATHLIKE_THING", "whatever")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8420, cfg.Server.Port)
}

func TestLoad_RejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	big := make([]byte, maxConfigFileSize+1)
	require.NoError(t, os.WriteFile(path, big, 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.OpenAI.APIKey = Secret("sk-test")
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := valid()
		cfg.OpenAI.APIKey = ""
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("bad temperature", func(t *testing.T) {
		cfg := valid()
		cfg.Generator.Temperature = 3.5
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("overlap not below chunk size", func(t *testing.T) {
		cfg := valid()
		cfg.Knowledge.ChunkOverlap = cfg.Knowledge.ChunkSize
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Format = "xml"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.NotContains(t, fmt.Sprintf("%#v", s), "sk-super-secret")
	assert.Equal(t, "sk-super-secret", s.Value())
	assert.True(t, s.IsSet())
	assert.False(t, Secret("").IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "server.port", envTransform("SERVER_PORT"))
	assert.Equal(t, "openai.api_key", envTransform("OPENAI_API_KEY"))
	assert.Equal(t, "knowledge.chunk_size", envTransform("KNOWLEDGE_CHUNK_SIZE"))
	assert.Equal(t, "home", envTransform("HOME"))
	assert.Equal(t, "ld_library_path", envTransform("LD_LIBRARY_PATH"))
}
