package vault

import (
	"github.com/pkg/errors"

	vault_data "github.com/code-payments/code-vault/pkg/code/data/vault"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/token"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

var (
	ErrUnauthorized         = errors.New("caller is not the vault authority")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientBalance  = errors.New("insufficient vault balance")
	ErrInvalidBump          = errors.New("bump does not derive a valid signing authority")
	ErrMissingSignature     = errors.New("missing required signature")
	ErrInvalidAccountOwner  = errors.New("vault token account is not owned by the vault")
	ErrInvalidStateAccount  = errors.New("state account is not the vault's state address")
	ErrInvalidPublicKey     = errors.New("invalid public key")
	ErrDistributedLockError = errors.New("failed to acquire distributed vault lock")
)

// Errors surfaced from the state store
var (
	ErrAlreadyInitialized = vault_data.ErrAlreadyInitialized
	ErrNotFound           = vault_data.ErrNotFound
	ErrOverflow           = vault_data.ErrOverflow
)

// ToProgramError converts a handler error into the numeric error the vault
// program, or the token program for transfer failures, would return. The
// second return value is false for errors without a program equivalent.
func ToProgramError(err error) (solana.CustomError, bool) {
	if err == nil {
		return 0, false
	}

	if transferErr, ok := token.AsTransferError(err); ok {
		return transferErr.Code, true
	}

	for _, mapping := range []struct {
		err  error
		code solana.CustomError
	}{
		{ErrUnauthorized, vault_program.ErrorUnauthorized},
		{ErrInsufficientBalance, vault_program.ErrorInsufficientBalance},
		{ErrInvalidAmount, vault_program.ErrorInvalidAmount},
		{ErrOverflow, vault_program.ErrorOverflow},
		{ErrAlreadyInitialized, vault_program.ErrorAlreadyInitialized},
		{ErrNotFound, vault_program.ErrorNotFound},
		{ErrInvalidBump, vault_program.ErrorInvalidBump},
		{ErrMissingSignature, vault_program.ErrorMissingSignature},
		{ErrInvalidAccountOwner, vault_program.ErrorInvalidVaultAccount},
	} {
		if errors.Is(err, mapping.err) {
			return mapping.code, true
		}
	}

	return 0, false
}

// isExpectedRejection reports whether err is a domain rejection rather than
// an infrastructure failure
func isExpectedRejection(err error) bool {
	_, ok := ToProgramError(err)
	if ok {
		return true
	}

	for _, target := range []error{
		ErrInvalidStateAccount,
		ErrInvalidPublicKey,
		solana.ErrIncorrectProgram,
		vault_program.ErrInvalidInstructionData,
		vault_program.ErrInvalidAccounts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
