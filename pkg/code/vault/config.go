package vault

import (
	"time"

	"github.com/code-payments/code-vault/pkg/config"
	"github.com/code-payments/code-vault/pkg/config/env"
	"github.com/code-payments/code-vault/pkg/config/memory"
	"github.com/code-payments/code-vault/pkg/config/wrapper"
)

const (
	envConfigPrefix = "VAULT_"

	StrictValidationConfigEnvName = envConfigPrefix + "STRICT_VALIDATION"
	defaultStrictValidation       = true

	DistributedLockTimeoutConfigEnvName = envConfigPrefix + "DISTRIBUTED_LOCK_TIMEOUT"
	defaultDistributedLockTimeout       = 5 * time.Second

	MaxDepositQuarksConfigEnvName = envConfigPrefix + "MAX_DEPOSIT_QUARKS"
	defaultMaxDepositQuarks       = 0 // unlimited
)

type conf struct {
	// When disabled, deposits of zero and withdrawals beyond the vault's
	// balance are left for the token program to accept or reject.
	strictValidation       config.Bool
	distributedLockTimeout config.Duration
	maxDepositQuarks       config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			strictValidation:       env.NewBoolConfig(StrictValidationConfigEnvName, defaultStrictValidation),
			distributedLockTimeout: env.NewDurationConfig(DistributedLockTimeoutConfigEnvName, defaultDistributedLockTimeout),
			maxDepositQuarks:       env.NewUint64Config(MaxDepositQuarksConfigEnvName, defaultMaxDepositQuarks),
		}
	}
}

type testOverrides struct {
	disableStrictValidation bool
	distributedLockTimeout  time.Duration
	maxDepositQuarks        uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	if overrides.distributedLockTimeout == 0 {
		overrides.distributedLockTimeout = defaultDistributedLockTimeout
	}

	return func() *conf {
		return &conf{
			strictValidation:       wrapper.NewBoolConfig(memory.NewConfig(!overrides.disableStrictValidation), defaultStrictValidation),
			distributedLockTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.distributedLockTimeout), defaultDistributedLockTimeout),
			maxDepositQuarks:       wrapper.NewUint64Config(memory.NewConfig(overrides.maxDepositQuarks), defaultMaxDepositQuarks),
		}
	}
}
