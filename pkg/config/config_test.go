package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1.0.0", cfg.Analysis.Version)
	assert.Equal(t, 5, cfg.Analysis.MaxWorker)
	assert.Equal(t, 50, cfg.Analysis.TopK)
	assert.Equal(t, 4096, cfg.Analysis.ChunkSize)
	assert.Equal(t, "./heapdom.db", cfg.Output.SQLitePath)
	assert.Equal(t, "heapdom", cfg.Telemetry.ServiceName)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
analysis:
  version: "2.0.0"
  max_worker: 10
  top_k: 100
output:
  sqlite_path: /tmp/heapdom.db
  gzip: true
storage:
  type: local
  local_path: /tmp/storage
telemetry:
  enabled: true
  service_name: heapdom-custom
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Analysis.Version)
	assert.Equal(t, 10, cfg.Analysis.MaxWorker)
	assert.Equal(t, 100, cfg.Analysis.TopK)
	assert.Equal(t, "/tmp/heapdom.db", cfg.Output.SQLitePath)
	assert.True(t, cfg.Output.Gzip)
	assert.Equal(t, "/tmp/storage", cfg.Storage.LocalPath)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "heapdom-custom", cfg.Telemetry.ServiceName)
}

func TestLoad_InvalidMaxWorker(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
analysis:
  max_worker: 0
storage:
  type: local
  local_path: ./storage
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_worker must be at least 1")
}

func TestLoad_COSSettings(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
storage:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
}

func TestValidate_NegativeTopK(t *testing.T) {
	cfg := &Config{
		Analysis: AnalysisConfig{MaxWorker: 1, TopK: -1},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "top_k must not be negative")
}

func TestValidate_InvalidMaxWorker(t *testing.T) {
	cfg := &Config{
		Analysis: AnalysisConfig{MaxWorker: 0},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_worker must be at least 1")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
analysis:
  max_worker: 7
storage:
  type: local
  local_path: ./storage
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.MaxWorker)
}
