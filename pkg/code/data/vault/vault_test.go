package vault

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	record := &Record{
		Vault:     newAddress(t),
		Authority: newAddress(t),
		Bump:      255,
	}
	require.NoError(t, record.Validate())

	for _, mutate := range []func(r *Record){
		func(r *Record) { r.Vault = "" },
		func(r *Record) { r.Authority = "" },
		func(r *Record) { r.Vault = "not-base58-0OIl" },
		func(r *Record) { r.Authority = base58.Encode([]byte{1, 2, 3}) },
	} {
		cloned := record.Clone()
		mutate(cloned)
		assert.Error(t, cloned.Validate())
	}
}

func TestRecord_CloneAndCopy(t *testing.T) {
	now := time.Now()
	record := &Record{
		Id:             3,
		Vault:          newAddress(t),
		Authority:      newAddress(t),
		Bump:           250,
		TotalDeposited: 12345,
		CreatedAt:      now,
		LastUpdatedAt:  now.Add(time.Second),
	}

	cloned := record.Clone()
	assert.Equal(t, record, cloned)

	var copied Record
	record.CopyTo(&copied)
	assert.Equal(t, record, &copied)

	cloned.TotalDeposited++
	assert.EqualValues(t, 12345, record.TotalDeposited)
}

func TestRecord_ToStateAccount(t *testing.T) {
	authority := newAddress(t)
	record := &Record{
		Vault:          newAddress(t),
		Authority:      authority,
		Bump:           7,
		TotalDeposited: 99,
	}

	state, err := record.ToStateAccount()
	require.NoError(t, err)
	assert.Equal(t, authority, base58.Encode(state.Authority))
	assert.EqualValues(t, 7, state.Bump)
	assert.EqualValues(t, 99, state.TotalDeposited)
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(pub)
}
