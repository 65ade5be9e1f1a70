package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	content := `
server:
  address: ":9090"
  api_key: "secret"
llm:
  model: "qwen-plus"
  qpm: 120
extractor:
  schema: "basic_info"
  max_chars: 2000
redis:
  address: "redis:6379"
logger:
  level: "debug"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "qwen-plus", cfg.LLM.Model)
	assert.Equal(t, 120, cfg.LLM.QPM)
	assert.Equal(t, "basic_info", cfg.Extractor.Schema)
	assert.Equal(t, 2000, cfg.Extractor.MaxChars)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "debug", cfg.Logger.Level)

	// 未显式配置的字段获得默认值
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "resume-originals", cfg.MinIO.OriginalsBucket)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: from-file\n"), 0644))

	t.Setenv("LLM_API_KEY", "from-env")
	t.Setenv("LLM_MODEL", "qwen-max")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "qwen-max", cfg.LLM.Model)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "qwen-turbo", cfg.LLM.Model)
	assert.Equal(t, "profile", cfg.Extractor.Schema)
	assert.Equal(t, 4000, cfg.Extractor.MaxChars)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 365, cfg.Redis.MD5RecordExpireDays)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("garbage", time.Minute))
}
