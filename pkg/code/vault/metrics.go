package vault

import (
	"context"
	"time"

	"github.com/code-payments/code-vault/pkg/metrics"
)

const (
	vaultInitializedEventName = "VaultInitialized"
	vaultDepositEventName     = "VaultDeposit"
	vaultWithdrawalEventName  = "VaultWithdrawal"
	vaultRejectionEventName   = "VaultOperationRejected"
	vaultLockLostEventName    = "VaultLockLost"

	vaultCountMetricName    = "Vault/initialized_count"
	vaultLockWaitMetricName = "Vault/lock_wait_ms"
)

func recordInitializedEvent(ctx context.Context, vault, authority string, bump uint8) {
	metrics.RecordEvent(ctx, vaultInitializedEventName, map[string]interface{}{
		"vault":     vault,
		"authority": authority,
		"bump":      bump,
	})
}

func recordDepositEvent(ctx context.Context, vault, depositor string, amount, totalDeposited uint64) {
	metrics.RecordEvent(ctx, vaultDepositEventName, map[string]interface{}{
		"vault":           vault,
		"depositor":       depositor,
		"amount":          amount,
		"total_deposited": totalDeposited,
	})
}

func recordWithdrawalEvent(ctx context.Context, vault, destination string, amount uint64) {
	metrics.RecordEvent(ctx, vaultWithdrawalEventName, map[string]interface{}{
		"vault":       vault,
		"destination": destination,
		"amount":      amount,
	})
}

func recordRejectionEvent(ctx context.Context, vault, operation string, err error) {
	kvs := map[string]interface{}{
		"vault":     vault,
		"operation": operation,
		"error":     err.Error(),
	}
	if code, ok := ToProgramError(err); ok {
		kvs["code"] = int(code)
	}
	metrics.RecordEvent(ctx, vaultRejectionEventName, kvs)
}

// RecordMetrics reports point in time metrics across all vaults
func (p *Program) RecordMetrics(ctx context.Context) {
	p.recordVaultCount(ctx)
}

func (p *Program) recordVaultCount(ctx context.Context) {
	count, err := p.store.CountAll(ctx)
	if err != nil {
		p.log.WithError(err).Debug("failure counting vaults")
		return
	}
	metrics.RecordCount(ctx, vaultCountMetricName, count)
}

func recordLockLostEvent(ctx context.Context, lock string) {
	metrics.RecordEvent(ctx, vaultLockLostEventName, map[string]interface{}{
		"lock": lock,
	})
}

func recordLockWait(ctx context.Context, waited time.Duration) {
	metrics.RecordDuration(ctx, vaultLockWaitMetricName, waited)
}
