package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "localjson.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
backend: memory
log_level: debug
cache:
  ttl: 30s
  max_entries: none
minio:
  endpoint: localhost:9000
  bucket: docs
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "data", cfg.Root)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Second, *cfg.Cache.TTL)
	assert.Nil(t, cfg.Cache.MaxEntries)
	assert.True(t, cfg.Cache.ReadCache)
	assert.Equal(t, "docs", cfg.MinIO.Bucket)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "root: ./store\n"))
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "./store", cfg.Root)
	assert.Equal(t, DefaultConfig().Cache, cfg.Cache)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed yaml", body: "backend: [\n"},
		{name: "unknown backend", body: "backend: s3\n"},
		{name: "bad ttl", body: "cache:\n  ttl: soon\n"},
		{name: "negative max entries", body: "cache:\n  max_entries: -1\n"},
		{name: "empty root", body: "root: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
