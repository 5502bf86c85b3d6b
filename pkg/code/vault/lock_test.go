package vault

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	logrus_test "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lock_memory "github.com/code-payments/code-vault/pkg/lock/memory"
	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestDistributedLock_SerializesOperations(t *testing.T) {
	locks := lock_memory.NewLockManager()
	env := setupWithLocks(t, &testOverrides{}, locks)
	env.initialize(t)

	const workers = 8
	users := make([]*testUser, workers)
	for i := range users {
		users[i] = env.newUser(t, 5)
	}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(user *testUser) {
			defer wg.Done()

			for i := 0; i < 5; i++ {
				assert.NoError(t, env.program.Deposit(env.ctx, env.depositArgs(user, 1)))
			}
		}(user)
	}
	wg.Wait()

	env.assertTotalDeposited(t, workers*5)

	// One lock per operation, including Initialize
	assert.Equal(t, 1+workers*5, locks.CreatedCount())
}

func TestDistributedLock_Timeout(t *testing.T) {
	locks := lock_memory.NewLockManager()
	env := setupWithLocks(t, &testOverrides{distributedLockTimeout: 50 * time.Millisecond}, locks)
	env.initialize(t)

	user := env.newUser(t, 100)

	// Simulate another process holding the vault's lock
	held, err := locks.Create(env.ctx, "vault/"+base58.Encode(env.vault))
	require.NoError(t, err)
	_, err = held.Acquire(env.ctx)
	require.NoError(t, err)

	err = env.program.Deposit(env.ctx, env.depositArgs(user, 10))
	assert.ErrorIs(t, err, ErrDistributedLockError)
	assert.Equal(t, 0, env.token.TransferCount())
	env.assertTotalDeposited(t, 0)

	require.NoError(t, held.Unlock(context.Background()))

	require.NoError(t, env.program.Deposit(env.ctx, env.depositArgs(user, 10)))
	env.assertTotalDeposited(t, 10)
	assert.False(t, held.IsLocked())
}

func TestDistributedLock_LostDuringOperation(t *testing.T) {
	locks := lock_memory.NewLockManager()
	env := setupWithLocks(t, &testOverrides{}, locks)
	env.initialize(t)

	logger, hook := logrus_test.NewNullLogger()
	env.program.log = logrus.NewEntry(logger)

	lockLost := func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.WarnLevel && entry.Message == "distributed lock lost during vault operation" {
				return true
			}
		}
		return false
	}

	// Releasing normally is not reported
	unlock, err := env.program.lockVault(env.ctx, env.vault)
	require.NoError(t, err)
	unlock()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, lockLost())

	unlock, err = env.program.lockVault(env.ctx, env.vault)
	require.NoError(t, err)

	require.True(t, locks.Expire("vault/"+base58.Encode(env.vault)))
	require.NoError(t, testutil.WaitFor(time.Second, 10*time.Millisecond, lockLost))

	unlock()

	// The vault remains usable after the loss
	user := env.newUser(t, 10)
	require.NoError(t, env.program.Deposit(env.ctx, env.depositArgs(user, 10)))
	env.assertTotalDeposited(t, 10)
}
