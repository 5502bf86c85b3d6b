package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "code-vault", config.AppName)
	assert.Equal(t, StoreTypeMemory, config.StoreType)
	assert.Empty(t, config.EtcdEndpoints)
	assert.Equal(t, 10*time.Second, config.LockTTL)
	assert.Equal(t, "@every 1m", config.MetricsCronSchedule)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_TYPE", StoreTypePostgres)
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_USER", "vault")
	t.Setenv("POSTGRES_DB_NAME", "vault")
	t.Setenv("ETCD_ENDPOINTS", "localhost:2379")
	t.Setenv("LOCK_TTL", "30s")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, StoreTypePostgres, config.StoreType)
	assert.Equal(t, "localhost", config.PostgresHost)
	assert.Equal(t, 6543, config.PostgresPort)
	assert.Equal(t, []string{"localhost:2379"}, config.EtcdEndpoints)
	assert.Equal(t, 30*time.Second, config.LockTTL)
}

func TestLoadConfig_File(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("app_name: vault-test\nlog_level: warn\n"), 0600))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "vault-test", config.AppName)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := defaultConfig
	require.NoError(t, valid.Validate())

	for _, mutate := range []func(c *Config){
		func(c *Config) { c.AppName = "" },
		func(c *Config) { c.StoreType = "redis" },
		func(c *Config) { c.MetricsCronSchedule = "every minute" },
		func(c *Config) { c.StoreType = StoreTypePostgres },
		func(c *Config) {
			c.EtcdEndpoints = []string{"localhost:2379"}
			c.LockTTL = 2 * time.Minute
		},
		func(c *Config) {
			c.EtcdEndpoints = []string{"localhost:2379"}
			c.LockRootKey = ""
		},
	} {
		config := defaultConfig
		mutate(&config)
		assert.Error(t, config.Validate())
	}
}
