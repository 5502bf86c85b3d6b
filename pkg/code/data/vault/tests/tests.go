package tests

import (
	"context"
	"crypto/ed25519"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/code/data/vault"
)

func RunTests(t *testing.T, s vault.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s vault.Store){
		testHappyPath,
		testCreateIsOneShot,
		testNotFound,
		testOverflow,
		testConcurrentIncrements,
		testCountAll,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s vault.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		start := time.Now().Truncate(time.Second)

		ctx := context.Background()

		expected := &vault.Record{
			Vault:     newAddress(t),
			Authority: newAddress(t),
			Bump:      254,
		}
		cloned := expected.Clone()

		_, err := s.Get(ctx, expected.Vault)
		assert.Equal(t, vault.ErrNotFound, err)

		require.NoError(t, s.Create(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.False(t, expected.CreatedAt.Before(start))
		assert.False(t, expected.LastUpdatedAt.Before(start))

		actual, err := s.Get(ctx, expected.Vault)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)
		assert.EqualValues(t, 0, actual.TotalDeposited)

		total, err := s.AddToTotalDeposited(ctx, expected.Vault, 100)
		require.NoError(t, err)
		assert.EqualValues(t, 100, total)

		total, err = s.AddToTotalDeposited(ctx, expected.Vault, 50)
		require.NoError(t, err)
		assert.EqualValues(t, 150, total)

		actual, err = s.Get(ctx, expected.Vault)
		require.NoError(t, err)
		assert.EqualValues(t, 150, actual.TotalDeposited)
		assert.Equal(t, cloned.Authority, actual.Authority)
		assert.Equal(t, cloned.Bump, actual.Bump)
		assert.False(t, actual.LastUpdatedAt.Before(actual.CreatedAt))

		// Zero amounts are a no-op on the counter
		total, err = s.AddToTotalDeposited(ctx, expected.Vault, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 150, total)

		// New vaults always start with nothing deposited
		preset := &vault.Record{
			Vault:          newAddress(t),
			Authority:      newAddress(t),
			Bump:           253,
			TotalDeposited: 500,
		}
		require.NoError(t, s.Create(ctx, preset))
		assert.EqualValues(t, 0, preset.TotalDeposited)

		actual, err = s.Get(ctx, preset.Vault)
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.TotalDeposited)
	})
}

func testCreateIsOneShot(t *testing.T, s vault.Store) {
	t.Run("testCreateIsOneShot", func(t *testing.T) {
		ctx := context.Background()

		record := &vault.Record{
			Vault:     newAddress(t),
			Authority: newAddress(t),
			Bump:      255,
		}
		require.NoError(t, s.Create(ctx, record))

		_, err := s.AddToTotalDeposited(ctx, record.Vault, 10)
		require.NoError(t, err)

		duplicate := &vault.Record{
			Vault:     record.Vault,
			Authority: newAddress(t),
			Bump:      1,
		}
		assert.Equal(t, vault.ErrAlreadyInitialized, s.Create(ctx, duplicate))

		actual, err := s.Get(ctx, record.Vault)
		require.NoError(t, err)
		assert.Equal(t, record.Authority, actual.Authority)
		assert.Equal(t, record.Bump, actual.Bump)
		assert.EqualValues(t, 10, actual.TotalDeposited)

		invalid := &vault.Record{Vault: newAddress(t)}
		assert.Error(t, s.Create(ctx, invalid))
		_, err = s.Get(ctx, invalid.Vault)
		assert.Equal(t, vault.ErrNotFound, err)
	})
}

func testNotFound(t *testing.T, s vault.Store) {
	t.Run("testNotFound", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.AddToTotalDeposited(ctx, newAddress(t), 1)
		assert.Equal(t, vault.ErrNotFound, err)
	})
}

func testOverflow(t *testing.T, s vault.Store) {
	t.Run("testOverflow", func(t *testing.T) {
		ctx := context.Background()

		record := &vault.Record{
			Vault:     newAddress(t),
			Authority: newAddress(t),
			Bump:      253,
		}
		require.NoError(t, s.Create(ctx, record))

		total, err := s.AddToTotalDeposited(ctx, record.Vault, math.MaxUint64-1)
		require.NoError(t, err)
		assert.EqualValues(t, uint64(math.MaxUint64-1), total)

		_, err = s.AddToTotalDeposited(ctx, record.Vault, 2)
		assert.Equal(t, vault.ErrOverflow, err)

		actual, err := s.Get(ctx, record.Vault)
		require.NoError(t, err)
		assert.EqualValues(t, uint64(math.MaxUint64-1), actual.TotalDeposited)

		total, err = s.AddToTotalDeposited(ctx, record.Vault, 1)
		require.NoError(t, err)
		assert.EqualValues(t, uint64(math.MaxUint64), total)

		_, err = s.AddToTotalDeposited(ctx, record.Vault, 1)
		assert.Equal(t, vault.ErrOverflow, err)
	})
}

func testConcurrentIncrements(t *testing.T, s vault.Store) {
	t.Run("testConcurrentIncrements", func(t *testing.T) {
		ctx := context.Background()

		record := &vault.Record{
			Vault:     newAddress(t),
			Authority: newAddress(t),
			Bump:      252,
		}
		require.NoError(t, s.Create(ctx, record))

		workers := 16
		perWorker := 10

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for j := 0; j < perWorker; j++ {
					_, err := s.AddToTotalDeposited(ctx, record.Vault, 3)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		actual, err := s.Get(ctx, record.Vault)
		require.NoError(t, err)
		assert.EqualValues(t, workers*perWorker*3, actual.TotalDeposited)
	})
}

func testCountAll(t *testing.T, s vault.Store) {
	t.Run("testCountAll", func(t *testing.T) {
		ctx := context.Background()

		count, err := s.CountAll(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		for i := 0; i < 5; i++ {
			require.NoError(t, s.Create(ctx, &vault.Record{
				Vault:     newAddress(t),
				Authority: newAddress(t),
				Bump:      uint8(255 - i),
			}))

			count, err = s.CountAll(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, i+1, count)
		}
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *vault.Record) {
	assert.Equal(t, obj1.Vault, obj2.Vault)
	assert.Equal(t, obj1.Authority, obj2.Authority)
	assert.Equal(t, obj1.Bump, obj2.Bump)
	assert.Equal(t, obj1.TotalDeposited, obj2.TotalDeposited)
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(pub)
}
