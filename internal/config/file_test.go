package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile_JSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"database_dsn":"postgres://u@localhost/mm","tick_interval":2000000000,"location":"UTC"}`)

	cfg := defaults()
	require.NoError(t, parseFile(cfg, []string{"-config", path}))
	assert.Equal(t, "postgres://u@localhost/mm", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, "UTC", cfg.Location)
	assert.Equal(t, 800, cfg.PhotoMaxWidth)
}

func TestParseFile_TOML(t *testing.T) {
	path := writeTemp(t, "cfg.toml", `
database_dsn = "state/musclemap.db"
tick_interval = "500ms"
log_format = "json"
photo_max_width = 640
s3_bucket = "progress"
s3_endpoint = "http://127.0.0.1:9000"
`)

	cfg := defaults()
	require.NoError(t, parseFile(cfg, []string{"-c", path}))
	assert.Equal(t, "state/musclemap.db", cfg.DatabaseDSN)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 640, cfg.PhotoMaxWidth)
	assert.Equal(t, "progress", cfg.S3Bucket)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.S3Endpoint)
}

func TestParseFile_NoFlagIsNoop(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseFile(cfg, []string{"-d", "x.db"}))
	assert.Equal(t, defaults(), cfg)
}

func TestParseFile_Invalid(t *testing.T) {
	for _, tc := range []struct{ name, body string }{
		{"bad.json", `{"database_dsn": `},
		{"bad.toml", `database_dsn = `},
		{"dur.json", `{"tick_interval": "fast"}`},
	} {
		path := writeTemp(t, tc.name, tc.body)
		assert.Error(t, parseFile(defaults(), []string{"-c", path}), tc.name)
	}
}
