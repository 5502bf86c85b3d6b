package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over a fixed set of entries
type ring[T any] struct {
	hashRing *treemap.Map

	// Cached, since treemap.Map.Min() is O(log n)
	minEntryValue T
}

// newRing returns a new consistent hash ring where each entry is placed
// replicationFactor times.
func newRing[T any](entries map[string]T, replicationFactor uint) *ring[T] {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for k, v := range entries {
		keyHash, _ := murmur3.Sum128([]byte(k))
		keyHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(keyHashBytes, keyHash)

		for i := uint32(0); i < uint32(replicationFactor); i++ {
			indexBytes := make([]byte, 4)
			binary.LittleEndian.PutUint32(indexBytes, i)

			hasher := murmur3.New128()
			hasher.Write(keyHashBytes)
			hasher.Write(indexBytes)
			hash, _ := hasher.Sum128()

			hashRing.Put(int64(hash), v)
		}
	}

	r := &ring[T]{hashRing: hashRing}
	if _, minEntryValue := hashRing.Min(); minEntryValue != nil {
		r.minEntryValue = minEntryValue.(T)
	}
	return r
}

// shard consistently hashes the key and returns the sharded entry value
func (r *ring[T]) shard(key []byte) T {
	raw, _ := murmur3.Sum128(key)
	if _, shard := r.hashRing.Ceiling(int64(raw)); shard != nil {
		return shard.(T)
	}
	return r.minEntryValue
}
