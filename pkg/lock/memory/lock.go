package memory

import (
	"context"
	"sync"

	"github.com/code-payments/code-vault/pkg/lock"
)

// LockManager is an in process lock.Manager. Locks with the same name share a
// single underlying slot.
type LockManager struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	holders map[string]*Lock
	created int
}

func NewLockManager() *LockManager {
	return &LockManager{
		slots:   make(map[string]chan struct{}),
		holders: make(map[string]*Lock),
	}
}

// Create implements lock.Manager.Create
func (lm *LockManager) Create(_ context.Context, name string) (lock.DistributedLock, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	slot, ok := lm.slots[name]
	if !ok {
		slot = make(chan struct{}, 1)
		lm.slots[name] = slot
	}
	lm.created++

	return &Lock{manager: lm, name: name, slot: slot}, nil
}

// CreatedCount returns the number of locks handed out
func (lm *LockManager) CreatedCount() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	return lm.created
}

// Expire force releases the lock currently held under name, as if its
// session had ended. It reports whether a held lock was released.
func (lm *LockManager) Expire(name string) bool {
	lm.mu.Lock()
	holder := lm.holders[name]
	lm.mu.Unlock()

	if holder == nil {
		return false
	}
	return holder.release()
}

func (lm *LockManager) setHolder(name string, l *Lock) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.holders[name] = l
}

type Lock struct {
	manager *LockManager
	name    string
	slot    chan struct{}

	mu        sync.Mutex
	acquiring bool
	held      bool
	lostCh    chan struct{}
}

// Acquire implements lock.DistributedLock.Acquire
func (l *Lock) Acquire(ctx context.Context) (<-chan struct{}, error) {
	l.mu.Lock()
	if l.held || l.acquiring {
		l.mu.Unlock()
		return nil, lock.ErrAlreadyAcquiring
	}
	l.acquiring = true
	l.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		l.mu.Lock()
		l.acquiring = false
		l.mu.Unlock()
		return nil, ctx.Err()
	}

	l.mu.Lock()
	l.acquiring = false
	l.held = true
	l.lostCh = make(chan struct{})
	lostCh := l.lostCh
	l.mu.Unlock()

	l.manager.setHolder(l.name, l)

	return lostCh, nil
}

// Unlock implements lock.DistributedLock.Unlock
func (l *Lock) Unlock(_ context.Context) error {
	l.release()
	return nil
}

// IsLocked implements lock.DistributedLock.IsLocked
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.held
}

func (l *Lock) release() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return false
	}

	l.held = false
	close(l.lostCh)
	<-l.slot
	return true
}
