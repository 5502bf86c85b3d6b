package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_UnmarshalMainnetData(t *testing.T) {
	data, err := hex.DecodeString("118a08c9d4cc46c576282e0daf050bbdb04f03313e35e5db3f3def69fa1eeec42b15a9cd4bef2cd809e464570d2a6cbd9bcc64e32ea4ebbcf748757bbb3dd5bd000084e2506ce67c000000000000000000000000000000000000000000000000000000000000000000000000010000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	mint, err := base58.Decode("2BU1Xgyzqixhjaq9Pa5cNsaa1gSejLeNtDaDRv29qoZm")
	require.NoError(t, err)

	var a Account
	require.True(t, a.Unmarshal(data))
	assert.Equal(t, mint, []byte(a.Mint))
	assert.Equal(t, uint64(9e13*1e5), a.Amount)
	assert.Equal(t, AccountStateInitialized, a.State)
	assert.Empty(t, a.Delegate)
	assert.Empty(t, a.CloseAuthority)
	assert.Nil(t, a.IsNative)

	assert.Equal(t, data, a.Marshal())
}

func TestAccount_RoundTrip(t *testing.T) {
	key := func(b byte) ed25519.PublicKey {
		return bytes.Repeat([]byte{b}, ed25519.PublicKeySize)
	}

	isNative := uint64(2)
	expected := Account{
		Mint:            key(1),
		Owner:           key(2),
		Amount:          10,
		Delegate:        key(3),
		State:           AccountStateFrozen,
		IsNative:        &isNative,
		DelegatedAmount: 5,
		CloseAuthority:  key(4),
	}

	var actual Account
	require.True(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, actual)

	assert.False(t, actual.Unmarshal(expected.Marshal()[:AccountSize-1]))
}
