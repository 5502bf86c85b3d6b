package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/solana"
)

func TestTransfer_RoundTrip(t *testing.T) {
	keys := make([]ed25519.PublicKey, 3)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	ix := Transfer(keys[0], keys[1], keys[2], 123456789)
	assert.EqualValues(t, ProgramKey, ix.Program)
	assert.EqualValues(t, []ed25519.PublicKey{keys[2]}, ix.RequiredSigners())
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.False(t, ix.Accounts[2].IsWritable)

	decompiled, err := DecompileTransfer(ix)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Source)
	assert.EqualValues(t, keys[1], decompiled.Destination)
	assert.EqualValues(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 123456789, decompiled.Amount)
}

func TestDecompileTransfer_Invalid(t *testing.T) {
	keys := make([]ed25519.PublicKey, 3)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	ix := Transfer(keys[0], keys[1], keys[2], 1)
	ix.Program = keys[0]
	_, err := DecompileTransfer(ix)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	ix = Transfer(keys[0], keys[1], keys[2], 1)
	ix.Data[0] = 9
	_, err = DecompileTransfer(ix)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	ix = Transfer(keys[0], keys[1], keys[2], 1)
	ix.Data = ix.Data[:5]
	_, err = DecompileTransfer(ix)
	assert.Error(t, err)

	ix = Transfer(keys[0], keys[1], keys[2], 1)
	ix.Accounts = ix.Accounts[:2]
	_, err = DecompileTransfer(ix)
	assert.Error(t, err)

	ix = Transfer(keys[0], keys[1], keys[2], 1)
	ix.Accounts[2].IsSigner = false
	_, err = DecompileTransfer(ix)
	assert.Error(t, err)
}

func TestTransferErrors(t *testing.T) {
	wrapped := error(ErrInsufficientFunds)
	transferErr, ok := AsTransferError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorInsufficientFunds, transferErr.Code)

	_, ok = AsTransferError(ErrAccountNotFound)
	assert.False(t, ok)
}
