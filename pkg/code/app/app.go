package app

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	v3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	vault_data "github.com/code-payments/code-vault/pkg/code/data/vault"
	vault_data_memory "github.com/code-payments/code-vault/pkg/code/data/vault/memory"
	vault_data_postgres "github.com/code-payments/code-vault/pkg/code/data/vault/postgres"
	"github.com/code-payments/code-vault/pkg/code/vault"
	pg "github.com/code-payments/code-vault/pkg/database/postgres"
	"github.com/code-payments/code-vault/pkg/lock"
	lock_etcd "github.com/code-payments/code-vault/pkg/lock/etcd"
	"github.com/code-payments/code-vault/pkg/metrics"
	token_memory "github.com/code-payments/code-vault/pkg/solana/token/memory"
)

const (
	defaultShutdownTimeout = 5 * time.Second
)

// App holds a fully wired vault Program and the resources backing it
type App struct {
	log *logrus.Entry

	Program *vault.Program
	Store   vault_data.Store
	Token   vault.TokenProgram

	metricsProvider *newrelic.Application

	closeOnce sync.Once
	closers   []func()
}

type opts struct {
	token vault.TokenProgram
}

type Option func(*opts)

// WithTokenProgram sets the token program used to move funds. An in memory
// token program is used by default.
func WithTokenProgram(token vault.TokenProgram) Option {
	return func(o *opts) {
		o.token = token
	}
}

// New wires a vault Program from config. Close must be called to release the
// underlying resources.
func New(config *Config, options ...Option) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o opts
	for _, option := range options {
		option(&o)
	}

	app := &App{
		log: logrus.StandardLogger().WithField("type", "code/app"),
	}

	var err error
	app.metricsProvider, err = newMetricsProvider(config)
	if err != nil {
		return nil, err
	}
	configureLogger(config, app.metricsProvider)
	if app.metricsProvider != nil {
		app.closers = append(app.closers, func() {
			app.metricsProvider.Shutdown(defaultShutdownTimeout)
		})
	}

	app.Store, err = app.newStore(config)
	if err != nil {
		app.Close()
		return nil, err
	}

	distributedLocks, err := app.newLockManager(config)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Token = o.token
	if app.Token == nil {
		app.Token = token_memory.New()
	}

	app.Program = vault.New(app.Store, app.Token, distributedLocks, vault.WithEnvConfigs())

	if err := app.startMetricsCron(config); err != nil {
		app.Close()
		return nil, err
	}

	app.log.WithFields(logrus.Fields{
		"app_name":          config.AppName,
		"store_type":        config.StoreType,
		"distributed_locks": distributedLocks != nil,
		"metrics_enabled":   app.metricsProvider != nil,
	}).Info("vault app initialized")

	return app, nil
}

// Context returns ctx with the app's metrics provider attached, so operations
// executed with it are traced
func (a *App) Context(ctx context.Context) context.Context {
	if a.metricsProvider == nil {
		return ctx
	}
	return metrics.WithApplication(ctx, a.metricsProvider)
}

// Close releases all resources held by the app. It is idempotent.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			a.closers[i]()
		}
	})
}

// startMetricsCron periodically reports vault metrics. Nothing is scheduled
// when metrics are disabled.
func (a *App) startMetricsCron(config *Config) error {
	if a.metricsProvider == nil || len(config.MetricsCronSchedule) == 0 {
		return nil
	}

	cronJob := cron.New(cron.WithLocation(time.UTC))
	_, err := cronJob.AddFunc(config.MetricsCronSchedule, func() {
		a.Program.RecordMetrics(a.Context(context.Background()))
	})
	if err != nil {
		return errors.Wrap(err, "error scheduling metrics cron")
	}
	cronJob.Start()

	a.closers = append(a.closers, func() {
		<-cronJob.Stop().Done()
	})
	return nil
}

func newMetricsProvider(config *Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	nr, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to new relic")
	}
	return nr, nil
}

func (a *App) newStore(config *Config) (vault_data.Store, error) {
	switch config.StoreType {
	case StoreTypeMemory:
		return vault_data_memory.New(), nil
	case StoreTypePostgres:
		db, err := pg.NewWithUsernameAndPassword(&pg.Config{
			User:               config.PostgresUser,
			Host:               config.PostgresHost,
			Password:           config.PostgresPassword,
			Port:               config.PostgresPort,
			DbName:             config.PostgresDbName,
			MaxOpenConnections: config.PostgresMaxOpenConnections,
			MaxIdleConnections: config.PostgresMaxIdleConnections,
			ConnMaxLifetime:    config.PostgresConnMaxLifetime,
		})
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to postgres")
		}
		a.closers = append(a.closers, closeDB(a.log, db))

		return vault_data_postgres.New(db), nil
	}
	return nil, errors.Errorf("unsupported store type: %s", config.StoreType)
}

func (a *App) newLockManager(config *Config) (lock.Manager, error) {
	if len(config.EtcdEndpoints) == 0 {
		return nil, nil
	}

	client, err := v3.New(v3.Config{
		Endpoints:   config.EtcdEndpoints,
		DialTimeout: config.EtcdDialTimeout,
		Logger:      newEtcdLogger(config),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating etcd client")
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.log.WithError(err).Warn("failure closing etcd client")
		}
	})

	lockManager, err := lock_etcd.NewLockManager(client, config.LockRootKey, config.LockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "error creating lock manager")
	}
	a.closers = append(a.closers, lockManager.Close)

	return lockManager, nil
}

// newEtcdLogger builds the zap logger the etcd client requires, at a level
// matching the app's logrus level
func newEtcdLogger(config *Config) *zap.Logger {
	zapConfig := zap.NewProductionConfig()
	if strings.ToLower(config.LogLevel) == "debug" || strings.ToLower(config.LogLevel) == "trace" {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func closeDB(log *logrus.Entry, db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failure closing db")
		}
	}
}

func configureLogger(config *Config, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}
