package app

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	StoreTypeMemory   = "memory"
	StoreTypePostgres = "postgres"
)

// Config is the bootstrap configuration for a vault process
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Metrics are disabled when no license key is provided
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	// Cron schedule for reporting point in time vault metrics
	MetricsCronSchedule string `mapstructure:"metrics_cron_schedule"`

	// StoreType is one of memory or postgres
	StoreType string `mapstructure:"store_type"`

	PostgresHost               string        `mapstructure:"postgres_host"`
	PostgresPort               int           `mapstructure:"postgres_port"`
	PostgresUser               string        `mapstructure:"postgres_user"`
	PostgresPassword           string        `mapstructure:"postgres_password"`
	PostgresDbName             string        `mapstructure:"postgres_db_name"`
	PostgresMaxOpenConnections int           `mapstructure:"postgres_max_open_connections"`
	PostgresMaxIdleConnections int           `mapstructure:"postgres_max_idle_connections"`
	PostgresConnMaxLifetime    time.Duration `mapstructure:"postgres_conn_max_lifetime"`

	// Distributed vault locks are disabled when no endpoints are provided
	EtcdEndpoints   []string      `mapstructure:"etcd_endpoints"`
	EtcdDialTimeout time.Duration `mapstructure:"etcd_dial_timeout"`
	LockRootKey     string        `mapstructure:"lock_root_key"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
}

var defaultConfig = Config{
	LogLevel: "info",

	AppName: "code-vault",

	MetricsCronSchedule: "@every 1m",

	StoreType: StoreTypeMemory,

	PostgresPort:               5432,
	PostgresMaxOpenConnections: 10,
	PostgresMaxIdleConnections: 10,
	PostgresConnMaxLifetime:    time.Hour,

	EtcdDialTimeout: 5 * time.Second,
	LockRootKey:     "/code/vault/locks",
	LockTTL:         10 * time.Second,
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
	_ = v.BindEnv("metrics_cron_schedule", "METRICS_CRON_SCHEDULE")

	_ = v.BindEnv("store_type", "STORE_TYPE")

	_ = v.BindEnv("postgres_host", "POSTGRES_HOST")
	_ = v.BindEnv("postgres_port", "POSTGRES_PORT")
	_ = v.BindEnv("postgres_user", "POSTGRES_USER")
	_ = v.BindEnv("postgres_password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres_db_name", "POSTGRES_DB_NAME")
	_ = v.BindEnv("postgres_max_open_connections", "POSTGRES_MAX_OPEN_CONNECTIONS")
	_ = v.BindEnv("postgres_max_idle_connections", "POSTGRES_MAX_IDLE_CONNECTIONS")
	_ = v.BindEnv("postgres_conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	_ = v.BindEnv("etcd_endpoints", "ETCD_ENDPOINTS")
	_ = v.BindEnv("etcd_dial_timeout", "ETCD_DIAL_TIMEOUT")
	_ = v.BindEnv("lock_root_key", "LOCK_ROOT_KEY")
	_ = v.BindEnv("lock_ttl", "LOCK_TTL")
}

// LoadConfig reads the config file at configPath, if it exists, and overlays
// any environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	bindEnv(v)

	// ReadInConfig only returns ConfigFileNotFoundError when searching for a
	// default config file, so an explicit path is checked here.
	if len(configPath) > 0 {
		_, err := os.Stat(configPath)
		if err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, "error loading config")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "error checking if config exists")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if len(c.AppName) == 0 {
		return errors.New("app name is required")
	}

	if len(c.MetricsCronSchedule) > 0 {
		if _, err := cron.ParseStandard(c.MetricsCronSchedule); err != nil {
			return errors.Wrap(err, "invalid metrics cron schedule")
		}
	}

	switch c.StoreType {
	case StoreTypeMemory:
	case StoreTypePostgres:
		if len(c.PostgresHost) == 0 {
			return errors.New("postgres host is required")
		}
		if len(c.PostgresUser) == 0 {
			return errors.New("postgres user is required")
		}
		if len(c.PostgresDbName) == 0 {
			return errors.New("postgres db name is required")
		}
	default:
		return errors.Errorf("unsupported store type: %s", c.StoreType)
	}

	if len(c.EtcdEndpoints) > 0 {
		if c.LockTTL < time.Second || c.LockTTL > time.Minute {
			return errors.Errorf("invalid lock ttl: %s (must be [1s, 60s])", c.LockTTL)
		}
		if len(c.LockRootKey) == 0 {
			return errors.New("lock root key is required")
		}
	}

	return nil
}
