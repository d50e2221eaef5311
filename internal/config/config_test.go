package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "exercise_tracker"
redis_host = "localhost"
redis_port = "6379"
register_rate_limit_allowed_per_min = 10
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
static_files_path = "./assets"

[production]
host = ""
port = 3000
log_level = "debug"
logs_path = "/var/log/exercise-tracker/service.log"
sentry_enabled = true
postgres_host = "tracker-db"
postgres_port = "5432"
postgres_db_name = "exercise_tracker"
redis_host = "tracker-redis"
redis_port = "6379"
register_rate_limit_allowed_per_min = 5
prometheus_metrics_host = ""
prometheus_metrics_port = "2112"
static_files_path = "/var/www/exercise-tracker"
`

func testConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := testConfigFile(t)

	cfg, err := Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	// default port kicks in when not set
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "exercise_tracker", cfg.PostgresDBName)
	assert.False(t, cfg.SentryEnabled)

	cfg, err = Load("production", path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.True(t, cfg.SentryEnabled)
	assert.Equal(t, "tracker-db", cfg.PostgresHost)
	assert.Equal(t, 5, cfg.RegisterRateLimitAllowedPerMin)
}

func TestLoad_UnknownEnv(t *testing.T) {
	path := testConfigFile(t)

	cfg, err := Load("staging", path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("development", "/invalid/path/config.toml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
