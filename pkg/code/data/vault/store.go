package vault

import (
	"context"
)

type Store interface {
	// Create creates a vault's state. ErrAlreadyInitialized is returned if
	// state already exists for the vault.
	Create(ctx context.Context, record *Record) error

	// Get gets a vault's state. ErrNotFound is returned if the vault was
	// never initialized.
	Get(ctx context.Context, vault string) (*Record, error)

	// AddToTotalDeposited atomically increments a vault's deposit counter and
	// returns the new total. ErrOverflow is returned, and nothing is changed,
	// if the counter would exceed its maximum value.
	AddToTotalDeposited(ctx context.Context, vault string, amount uint64) (uint64, error)

	// CountAll returns the number of initialized vaults
	CountAll(ctx context.Context) (uint64, error)
}
