package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/stockdash.db", cfg.Database.SQLitePath)
	assert.Equal(t, 30, cfg.Upstream.RatePerMinute)
	assert.Equal(t, 30, cfg.Upstream.TimeoutSeconds)
	assert.Len(t, cfg.Securities, 10, "built-in NSE catalog")
	assert.NoError(t, cfg.Validate())
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
database:
  sqlite_path: "/tmp/x.db"
upstream:
  rate_per_minute: 10
securities:
  - symbol: AAPL
    name: Apple Inc
    upstream: AAPL
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.Equal(t, 10, cfg.Upstream.RatePerMinute)
	require.Len(t, cfg.Securities, 1)
	assert.Equal(t, "AAPL", cfg.Securities[0].UpstreamID)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644))

	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("SQLITE_PATH", "/tmp/override.db")
	t.Setenv("UPSTREAM_RATE_PER_MINUTE", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLitePath)
	assert.Equal(t, 5, cfg.Upstream.RatePerMinute)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsIncompleteCatalogEntry(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Securities[3].UpstreamID = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveRate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Upstream.RatePerMinute = -1
	assert.Error(t, cfg.Validate())
}
