package solana

import (
	"crypto/ed25519"
)

// Signer is something that can authorize an instruction on behalf of an
// address.
type Signer interface {
	// Address returns the address being authorized.
	Address() (ed25519.PublicKey, error)
}

// WalletSigner is an address whose signature was verified on the enclosing
// transaction by the runtime.
type WalletSigner ed25519.PublicKey

// Address implements Signer.Address
func (s WalletSigner) Address() (ed25519.PublicKey, error) {
	if len(s) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return ed25519.PublicKey(s), nil
}

// ProgramSigner authorizes a program derived address for a single invocation
// made by the owning program. The seeds are re-derived on every use and are
// never stored.
type ProgramSigner struct {
	Program ed25519.PublicKey
	Seeds   [][]byte
}

// Address implements Signer.Address
func (s ProgramSigner) Address() (ed25519.PublicKey, error) {
	return CreateProgramAddress(s.Program, s.Seeds...)
}
