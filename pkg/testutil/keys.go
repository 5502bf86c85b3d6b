package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

// NewRandomKey returns a random ed25519 public key
func NewRandomKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

// NewRandomAddress returns a random base58 encoded address
func NewRandomAddress(t *testing.T) string {
	return base58.Encode(NewRandomKey(t))
}
