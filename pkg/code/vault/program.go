package vault

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	vault_data "github.com/code-payments/code-vault/pkg/code/data/vault"
	"github.com/code-payments/code-vault/pkg/lock"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/sync"
)

const (
	metricsStructName = "vault.program"

	vaultLockStripes = 1024
)

// TokenProgram moves tokens between token accounts and answers questions
// about them.
type TokenProgram interface {
	// Transfer moves amount from source to destination, authorized by the
	// authority. It either fully succeeds or changes nothing.
	Transfer(ctx context.Context, source, destination ed25519.PublicKey, authority solana.Signer, amount uint64) error

	// GetBalance returns the balance of a token account
	GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error)

	// ValidateOwner checks that a token account is owned by owner
	ValidateOwner(ctx context.Context, address, owner ed25519.PublicKey) error
}

// Program executes vault operations against persisted vault state. Each vault
// is identified by its program address, and any number of vaults can be
// served by one Program.
type Program struct {
	log  *logrus.Entry
	conf *conf

	store vault_data.Store
	token TokenProgram

	vaultLocks       *sync.StripedLock
	distributedLocks lock.Manager
}

// New returns a new vault Program. distributedLocks is optional and, when
// provided, serializes operations on a vault across processes.
func New(store vault_data.Store, token TokenProgram, distributedLocks lock.Manager, configProvider ConfigProvider) *Program {
	return &Program{
		log:  logrus.StandardLogger().WithField("type", "vault/program"),
		conf: configProvider(),

		store: store,
		token: token,

		vaultLocks:       sync.NewStripedLock(vaultLockStripes),
		distributedLocks: distributedLocks,
	}
}

func (p *Program) isStrict(ctx context.Context) bool {
	return p.conf.strictValidation.Get(ctx)
}

// lockVault serializes all operations on a single vault. The returned func
// releases the lock.
func (p *Program) lockVault(ctx context.Context, vault ed25519.PublicKey) (func(), error) {
	start := time.Now()

	mu := p.vaultLocks.Get(vault)
	mu.Lock()

	if p.distributedLocks == nil {
		recordLockWait(ctx, time.Since(start))
		return mu.Unlock, nil
	}

	name := "vault/" + base58.Encode(vault)

	distributedLock, err := p.distributedLocks.Create(ctx, name)
	if err != nil {
		mu.Unlock()
		return nil, errors.Wrap(err, "error creating distributed lock")
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.conf.distributedLockTimeout.Get(ctx))
	defer cancel()

	lostCh, err := distributedLock.Acquire(acquireCtx)
	if err != nil {
		mu.Unlock()
		return nil, errors.Wrap(ErrDistributedLockError, err.Error())
	}
	recordLockWait(ctx, time.Since(start))

	// A lost lock can't abort an in-flight transfer. The store's atomic
	// increment still guards the counter, so loss is only reported.
	doneCh := make(chan struct{})
	go p.watchDistributedLock(ctx, name, lostCh, doneCh)

	return func() {
		close(doneCh)
		if err := distributedLock.Unlock(context.Background()); err != nil {
			p.log.WithError(err).WithField("lock", name).Warn("failure releasing distributed lock")
		}
		mu.Unlock()
	}, nil
}

func (p *Program) watchDistributedLock(ctx context.Context, name string, lostCh <-chan struct{}, doneCh <-chan struct{}) {
	select {
	case <-doneCh:
		return
	case <-lostCh:
	}

	select {
	case <-doneCh:
		// Released by the operation itself
		return
	default:
	}

	p.log.WithFields(logrus.Fields{
		"method": "lockVault",
		"lock":   name,
	}).Warn("distributed lock lost during vault operation")
	recordLockLostEvent(ctx, name)
}

func (p *Program) logFailure(log *logrus.Entry, err error, msg string) {
	if isExpectedRejection(err) {
		log.WithError(err).Debug(msg)
		return
	}
	log.WithError(err).Warn(msg)
}

func validatePublicKeys(keys ...ed25519.PublicKey) error {
	for _, key := range keys {
		if len(key) != ed25519.PublicKeySize {
			return ErrInvalidPublicKey
		}
	}
	return nil
}
