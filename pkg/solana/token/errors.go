package token

import (
	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/solana"
)

// TransferError is a rejected token transfer. The code is the token program's
// custom error for the failure.
type TransferError struct {
	Code solana.CustomError
	msg  string
}

func (e *TransferError) Error() string {
	return "token transfer failed: " + e.msg
}

var (
	ErrInsufficientFunds = &TransferError{Code: ErrorInsufficientFunds, msg: "insufficient funds"}
	ErrAccountMismatch   = &TransferError{Code: ErrorMintMismatch, msg: "account mismatch"}
	ErrUnauthorized      = &TransferError{Code: ErrorOwnerMismatch, msg: "unauthorized"}
	ErrAccountOverflow   = &TransferError{Code: ErrorOverflow, msg: "destination balance overflow"}
	ErrAccountFrozen     = &TransferError{Code: ErrorAccountFrozen, msg: "account frozen"}
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that an account exists at the given
	// address, but it is either not initialized, or not configured correctly.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	// ErrInvalidOwner indicates the account is not owned by the expected owner.
	ErrInvalidOwner = errors.New("invalid token account owner")
	// ErrAccountExists indicates an account already exists at the given address.
	ErrAccountExists = errors.New("token account already exists")
)

// AsTransferError extracts a TransferError from err, if present.
func AsTransferError(err error) (*TransferError, bool) {
	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		return transferErr, true
	}
	return nil, false
}
