package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
)

// StateSeed is the fixed domain label for the vault's state account, which is
// also the program owned authority over the vault token account.
var StateSeed = []byte("state")

// GetStateAddress returns the canonical state address and bump for a vault
// program.
func GetStateAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, StateSeed)
}

// GetSigningAuthority re-derives the vault's program owned signing identity
// from the stored bump. It is a pure function of its inputs.
func GetSigningAuthority(program ed25519.PublicKey, bump uint8) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddress(program, StateSeed, []byte{bump})
}

// GetSignerSeeds returns the capability that lets the vault program authorize
// a single outbound transfer as its signing identity.
func GetSignerSeeds(program ed25519.PublicKey, bump uint8) solana.ProgramSigner {
	return solana.ProgramSigner{
		Program: program,
		Seeds:   [][]byte{StateSeed, {bump}},
	}
}
