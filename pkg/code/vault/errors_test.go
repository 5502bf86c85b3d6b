package vault

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/token"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

func TestToProgramError(t *testing.T) {
	for _, tc := range []struct {
		err      error
		expected solana.CustomError
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
		{errors.Wrap(ErrUnauthorized, "wrapped"), vault_program.ErrorUnauthorized},
		{token.ErrInsufficientFunds, token.ErrorInsufficientFunds},
		{token.ErrUnauthorized, token.ErrorOwnerMismatch},
		{token.ErrAccountMismatch, token.ErrorMintMismatch},
	} {
		actual, ok := ToProgramError(tc.err)
		assert.True(t, ok, tc.err.Error())
		assert.Equal(t, tc.expected, actual, tc.err.Error())
	}

	for _, err := range []error{
		nil,
		errors.New("unexpected"),
		ErrDistributedLockError,
		ErrInvalidStateAccount,
	} {
		_, ok := ToProgramError(err)
		assert.False(t, ok)
	}
}

func TestIsExpectedRejection(t *testing.T) {
	assert.True(t, isExpectedRejection(ErrUnauthorized))
	assert.True(t, isExpectedRejection(token.ErrInsufficientFunds))
	assert.True(t, isExpectedRejection(ErrInvalidStateAccount))
	assert.True(t, isExpectedRejection(vault_program.ErrInvalidInstructionData))

	assert.False(t, isExpectedRejection(errors.New("connection refused")))
	assert.False(t, isExpectedRejection(ErrDistributedLockError))
}
