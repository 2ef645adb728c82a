package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":5007", cfg.AppPort)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "posts.events", cfg.Kafka.PostsTopic)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_port: ":9000"
db:
  host: db.internal
  name: from_file
  replicas: ["host=r1 dbname=social_db"]
rate_limit:
  requests: 5
  window: 10s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "from_env")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.AppPort)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "from_env", cfg.DB.Name)
	assert.Equal(t, []string{"host=r1 dbname=social_db"}, cfg.DB.Replicas)
	assert.Equal(t, int64(5), cfg.Limit.Requests)
	assert.Equal(t, 10*time.Second, cfg.Limit.Window)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DB.DSN(), "dbname=from_env")
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)
}
