package lock

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrManagerClosed is returned when using a Manager after it was closed
	ErrManagerClosed = errors.New("lock manager closed")

	// ErrAlreadyAcquiring is returned when Acquire is called on a lock that's
	// already held or being acquired through the same handle
	ErrAlreadyAcquiring = errors.New("lock is already held or being acquired")
)

// Manager creates and manages locks. Locks produced for a given name are
// re-entrant per Manager, so callers must coordinate local concurrency
// themselves (ie. with a sync.StripedLock) before acquiring.
type Manager interface {
	// Create creates an unlocked DistributedLock for a specific key.
	Create(ctx context.Context, name string) (DistributedLock, error)
}

// DistributedLock is a handle to a lock that spans across multiple processes.
type DistributedLock interface {
	// Acquire blocks until the lock is acquired or ctx is done.
	//
	// The returned channel is closed when the lock is lost. The lock can be
	// lost when Unlock() is called, or the underlying implementation detects
	// that the lock _might_ have been lost.
	Acquire(ctx context.Context) (<-chan struct{}, error)

	// Unlock unlocks the lock, if the lock is held.
	//
	// Unlock is idempotent.
	Unlock(ctx context.Context) error

	// IsLocked returns whether the lock is held by the process/manager.
	IsLocked() bool
}
