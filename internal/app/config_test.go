package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CLIMB_CONFIG_FILE", "HTTP_ADDR", "DB_DRIVER", "SQLITE_PATH", "POSTGRES_DSN", "POSTGRES_HOST",
		"POSTGRES_REPLICA_DSNS", "DB_MAX_OPEN_CONNS", "DB_STATEMENT_TIMEOUT_MS", "AUTH_JWT_SECRET",
		"REDIS_ADDR", "REDIS_CHANNEL", "NEO4J_URI", "METRICS_ENABLED", "OTEL_ENABLED", "OTEL_TRACES_SAMPLER_ARG", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 20, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 15*time.Second, cfg.Postgres.StatementTimeout)
	assert.Equal(t, "climb-catalog.changes", cfg.Redis.Channel)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Neo4j.URI)
	assert.Equal(t, float64(1), cfg.Otel.SampleRatio)
}

func TestLoadConfigFileOverlayYieldsToEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "climb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
db_driver: sqlite
sqlite_path: /tmp/catalog.db
postgres:
  replica_dsns: ["postgres://replica-a", "postgres://replica-b"]
  statement_timeout_ms: 500
redis:
  addr: "localhost:6379"
otel:
  enabled: true
  sample_ratio: 0.25
`), 0o600))
	t.Setenv("CLIMB_CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("REDIS_CHANNEL", "changes-test")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/catalog.db", cfg.SQLitePath)
	assert.Len(t, cfg.Postgres.ReplicaDSNs, 2)
	assert.Equal(t, 500*time.Millisecond, cfg.Postgres.StatementTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "changes-test", cfg.Redis.Channel)
	assert.True(t, cfg.Otel.Enabled)
	assert.Equal(t, 0.25, cfg.Otel.SampleRatio)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	_, err := LoadConfig(nil)
	require.Error(t, err)
}

func TestLoadConfigBadFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: [unterminated"), 0o600))
	t.Setenv("CLIMB_CONFIG_FILE", path)
	_, err := LoadConfig(nil)
	require.Error(t, err)
}

func TestWireOverSQLite(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	cfg.DBDriver = DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "catalog.db")

	a, err := New(t.Context(), testLogger(t), cfg)
	require.NoError(t, err)
	defer a.Close(t.Context())

	assert.NotNil(t, a.Router)
	assert.Zero(t, a.Publishers.Fanout.Len())
	types, err := a.Services.Catalog.ListGradeTypes(t.Context(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, types)
	assert.Equal(t, "vermin", types[0].Name)
}
