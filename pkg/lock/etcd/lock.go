package etcd

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.etcd.io/etcd/api/v3/mvccpb"
	v3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"github.com/code-payments/code-vault/pkg/lock"
	"github.com/code-payments/code-vault/pkg/retry"
	"github.com/code-payments/code-vault/pkg/retry/backoff"
)

// LockManager hands out etcd backed mutexes rooted at a key prefix. All locks
// share a single lease-backed session, so closing the manager releases every
// lock it produced.
type LockManager struct {
	log     *logrus.Entry
	client  *v3.Client
	rootKey string
	lockTTL int

	closeOnce sync.Once
	closeCh   chan struct{}

	sessionMu sync.Mutex
	session   *concurrency.Session
}

func NewLockManager(client *v3.Client, rootKey string, lockTTL time.Duration) (*LockManager, error) {
	// WithTTL() defaults the TTL to 60 seconds if TTL <= 0 || TTL > 60 seconds
	if lockTTL < time.Second || lockTTL > time.Minute {
		return nil, errors.Errorf("invalid lock ttl: %s (must be [1s, 60s])", lockTTL)
	}

	lm := &LockManager{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type": "lock/etcd/LockManager",
			"root": rootKey,
		}),
		client:  client,
		rootKey: rootKey,
		lockTTL: int(lockTTL.Round(time.Second).Seconds()),

		closeCh: make(chan struct{}),
	}

	session, err := lm.newSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create etcd session")
	}
	lm.session = session

	// The session keeps itself alive across leadership changes, but can still
	// end when the cluster is leaderless or unreachable for longer than the
	// TTL. When that happens, held locks are gone and a new session is needed
	// for future ones.
	go lm.watchSession()

	return lm, nil
}

// Create implements lock.Manager.Create
func (lm *LockManager) Create(_ context.Context, name string) (lock.DistributedLock, error) {
	lm.sessionMu.Lock()
	defer lm.sessionMu.Unlock()

	if lm.session == nil {
		return nil, lock.ErrManagerClosed
	}

	return newLock(lm, path.Join(lm.rootKey, name)), nil
}

// Close closes the lock manager. All locks created by it become unlocked.
func (lm *LockManager) Close() {
	lm.closeOnce.Do(func() {
		lm.sessionMu.Lock()
		defer lm.sessionMu.Unlock()

		close(lm.closeCh)

		if err := lm.session.Close(); err != nil {
			lm.log.WithError(err).Warn("failed to close etcd session on close")
		}
		lm.session = nil
	})
}

func (lm *LockManager) currentSession() *concurrency.Session {
	lm.sessionMu.Lock()
	defer lm.sessionMu.Unlock()

	return lm.session
}

func (lm *LockManager) newSession() (*concurrency.Session, error) {
	return concurrency.NewSession(
		lm.client,
		concurrency.WithTTL(lm.lockTTL),
		concurrency.WithContext(v3.WithRequireLeader(context.Background())),
	)
}

func (lm *LockManager) watchSession() {
	for {
		session := lm.currentSession()
		if session == nil {
			return
		}

		select {
		case <-lm.closeCh:
			return
		case <-session.Done():
		}

		lm.log.Info("lock session expired, recreating session")

		var recreated *concurrency.Session
		_, err := retry.Retry(
			func() error {
				select {
				case <-lm.closeCh:
					return nil
				default:
				}

				var err error
				recreated, err = lm.newSession()
				if err != nil {
					lm.log.WithError(err).Warn("failed to recreate lock session")
				}
				return err
			},
			retry.BackoffWithJitter(backoff.BinaryExponential(250*time.Millisecond), 5*time.Second, 0.1),
		)
		if err != nil || recreated == nil {
			return
		}

		lm.sessionMu.Lock()
		if lm.session == nil {
			lm.sessionMu.Unlock()
			recreated.Close()
			return
		}
		lm.session = recreated
		lm.sessionMu.Unlock()
	}
}

// Lock is an etcd mutex bound to the manager's session at acquire time
type Lock struct {
	log *logrus.Entry
	lm  *LockManager
	key string

	mu     sync.Mutex
	mutex  *concurrency.Mutex
	lostCh chan struct{}
	stopCh chan struct{}
}

func newLock(lm *LockManager, key string) *Lock {
	return &Lock{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type": "lock/etcd/Lock",
			"key":  key,
		}),
		lm:  lm,
		key: key,
	}
}

// Acquire implements lock.DistributedLock.Acquire
func (l *Lock) Acquire(ctx context.Context) (<-chan struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mutex != nil {
		return nil, lock.ErrAlreadyAcquiring
	}

	session := l.lm.currentSession()
	if session == nil {
		return nil, lock.ErrManagerClosed
	}

	mutex := concurrency.NewMutex(session, l.key)
	if err := mutex.Lock(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to acquire lock")
	}

	l.log.Trace("lock acquired")

	l.mutex = mutex
	l.lostCh = make(chan struct{})
	l.stopCh = make(chan struct{})

	go l.watch(session, mutex.Key(), l.lostCh, l.stopCh)

	return l.lostCh, nil
}

func (l *Lock) watch(session *concurrency.Session, key string, lostCh, stopCh chan struct{}) {
	defer close(lostCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchCh := l.lm.client.Watch(ctx, key)

	for {
		select {
		case <-stopCh:
			return
		case <-session.Done():
			l.log.Warn("lock session ended, lock lost")
			l.markLost(stopCh)
			return
		case resp, ok := <-watchCh:
			if !ok || resp.Err() != nil {
				l.log.Warn("lock key watch ended, lock might be lost")
				l.markLost(stopCh)
				return
			}

			for _, event := range resp.Events {
				if event.Type == mvccpb.DELETE {
					l.log.Warn("lock key deleted, lock lost")
					l.markLost(stopCh)
					return
				}
			}
		}
	}
}

func (l *Lock) markLost(stopCh chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopCh == stopCh {
		l.mutex = nil
		l.stopCh = nil
	}
}

// Unlock implements lock.DistributedLock.Unlock
func (l *Lock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mutex == nil {
		return nil
	}

	err := l.mutex.Unlock(ctx)

	close(l.stopCh)
	l.mutex = nil
	l.stopCh = nil

	if err != nil {
		return errors.Wrap(err, "failed to release lock")
	}
	return nil
}

// IsLocked implements lock.DistributedLock.IsLocked
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutex != nil
}
