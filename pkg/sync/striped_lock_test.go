package sync

import (
	"crypto/ed25519"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripedLock_SerializesPerKey(t *testing.T) {
	const vaults = 32
	const incrementsPerVault = 500

	l := NewStripedLock(4)

	keys := make([]ed25519.PublicKey, vaults)
	for i := range keys {
		var err error
		keys[i], _, err = ed25519.GenerateKey(nil)
		require.NoError(t, err)
	}

	totals := make([]int, vaults)

	var wg base.WaitGroup
	start := make(chan struct{})
	for i := range keys {
		for j := 0; j < incrementsPerVault; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start

				mu := l.Get(keys[i])
				mu.Lock()
				totals[i]++
				mu.Unlock()
			}(i)
		}
	}

	close(start)
	wg.Wait()

	for _, total := range totals {
		assert.Equal(t, incrementsPerVault, total)
	}
}

func TestStripedLock_StableMapping(t *testing.T) {
	l := NewStripedLock(16)

	for i := 0; i < 100; i++ {
		key, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		assert.Same(t, l.Get(key), l.Get(key))
	}
}

func TestStripedLock_ZeroStripes(t *testing.T) {
	l := NewStripedLock(0)
	assert.Same(t, l.Get([]byte("vault1")), l.Get([]byte("vault2")))
}
