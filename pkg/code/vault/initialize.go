package vault

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	vault_data "github.com/code-payments/code-vault/pkg/code/data/vault"
	"github.com/code-payments/code-vault/pkg/metrics"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

type InitializeArgs struct {
	// The vault being initialized
	Vault ed25519.PublicKey

	// The caller, who becomes the vault's immutable authority
	Authority ed25519.PublicKey

	// The bump used to derive the vault's signing authority on withdrawals
	Bump uint8
}

// Initialize creates a vault's state with a zero deposit counter. A vault can
// only be initialized once. No tokens are moved.
func (p *Program) Initialize(ctx context.Context, args *InitializeArgs) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Initialize")
	defer tracer.End()

	tracer.AddAttributes(map[string]interface{}{
		"bump": args.Bump,
	})

	err := p.initialize(ctx, args)
	tracer.OnError(err)
	return err
}

func (p *Program) initialize(ctx context.Context, args *InitializeArgs) error {
	if err := validatePublicKeys(args.Vault, args.Authority); err != nil {
		return err
	}

	vault := base58.Encode(args.Vault)
	authority := base58.Encode(args.Authority)

	log := p.log.WithFields(logrus.Fields{
		"method":    "Initialize",
		"vault":     vault,
		"authority": authority,
		"bump":      args.Bump,
	})

	unlock, err := p.lockVault(ctx, args.Vault)
	if err != nil {
		log.WithError(err).Warn("failure locking vault")
		return err
	}
	defer unlock()

	if p.isStrict(ctx) {
		// Only the canonical bump derives the state address that owns the
		// vault's token account.
		_, canonical, err := vault_program.GetStateAddress(args.Vault)
		if err != nil {
			log.WithError(err).Warn("failure deriving state address")
			return err
		}
		if args.Bump != canonical {
			log.WithField("canonical_bump", canonical).Debug("bump is not the canonical state bump")
			recordRejectionEvent(ctx, vault, "initialize", ErrInvalidBump)
			return ErrInvalidBump
		}
	}

	record := &vault_data.Record{
		Vault:     vault,
		Authority: authority,
		Bump:      args.Bump,
	}
	if err := p.store.Create(ctx, record); err != nil {
		p.logFailure(log, err, "failure creating vault state")
		recordRejectionEvent(ctx, vault, "initialize", err)
		return err
	}

	log.Info("vault initialized")
	recordInitializedEvent(ctx, vault, authority, args.Bump)
	p.recordVaultCount(ctx)

	return nil
}
