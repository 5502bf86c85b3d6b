package vault_program

import (
	"github.com/code-payments/code-vault/pkg/solana"
)

// Custom errors returned by the vault program. The first two match the
// deployed program's error codes.
const (
	// Unauthorized access
	ErrorUnauthorized solana.CustomError = iota + 0x1770

	// Insufficient balance
	ErrorInsufficientBalance

	// Deposit amount must be positive and within limits
	ErrorInvalidAmount

	// Total deposited would overflow
	ErrorOverflow

	// Vault state already exists
	ErrorAlreadyInitialized

	// Vault state does not exist
	ErrorNotFound

	// Bump does not derive a valid signing authority
	ErrorInvalidBump

	// A required signature is missing
	ErrorMissingSignature

	// Vault token account isn't owned by the vault
	ErrorInvalidVaultAccount
)
