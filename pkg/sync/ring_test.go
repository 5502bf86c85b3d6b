package sync

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_SameKeySameEntry(t *testing.T) {
	entries := map[string]int{}
	for i := 0; i < 32; i++ {
		entries[fmt.Sprintf("stripe%d", i)] = i
	}
	r := newRing(entries, 100)

	for i := 0; i < 100; i++ {
		vault, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		expected := r.shard(vault)
		for j := 0; j < 10; j++ {
			assert.Equal(t, expected, r.shard(vault))
		}
	}
}

func TestRing_IndependentOfConstructionOrder(t *testing.T) {
	entries := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

	first := newRing(entries, 50)
	second := newRing(entries, 50)

	for i := 0; i < 1000; i++ {
		key := []byte(fmt.Sprintf("vault%d", i))
		assert.Equal(t, first.shard(key), second.shard(key))
	}
}

func TestRing_Spread(t *testing.T) {
	const stripes = 8
	const keys = 200_000

	entries := map[string]int{}
	for i := 0; i < stripes; i++ {
		entries[fmt.Sprintf("stripe%d", i)] = i
	}
	r := newRing(entries, hashEntriesPerLock)

	counts := make([]int, stripes)
	for i := 0; i < keys; i++ {
		counts[r.shard([]byte(fmt.Sprintf("vault%d", i)))]++
	}

	expected := float64(keys / stripes)
	for stripe, count := range counts {
		assert.InDelta(t, expected, float64(count), 0.15*expected, "stripe %d", stripe)
	}
}

func TestRing_Empty(t *testing.T) {
	r := newRing(map[string]int{}, 10)
	assert.Equal(t, 0, r.shard([]byte("vault")))
}
