package vault

import (
	"context"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/token"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

type DepositArgs struct {
	// The vault receiving the deposit
	Vault ed25519.PublicKey

	// The signer funding the deposit, who must own Source
	Depositor ed25519.PublicKey

	// The depositor's token account
	Source ed25519.PublicKey

	// The vault's token account
	Destination ed25519.PublicKey

	Amount uint64
}

// Deposit moves tokens from the depositor into the vault and adds the amount
// to the vault's lifetime deposit counter. The counter is only updated after
// the transfer succeeds.
func (p *Program) Deposit(ctx context.Context, args *DepositArgs) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Deposit")
	defer tracer.End()

	tracer.AddAttributes(map[string]interface{}{
		"amount": args.Amount,
	})

	err := p.deposit(ctx, args)
	tracer.OnError(err)
	return err
}

func (p *Program) deposit(ctx context.Context, args *DepositArgs) error {
	if err := validatePublicKeys(args.Vault, args.Depositor, args.Source, args.Destination); err != nil {
		return err
	}

	vault := base58.Encode(args.Vault)
	depositor := base58.Encode(args.Depositor)

	log := p.log.WithFields(logrus.Fields{
		"method":      "Deposit",
		"vault":       vault,
		"depositor":   depositor,
		"source":      base58.Encode(args.Source),
		"destination": base58.Encode(args.Destination),
		"amount":      args.Amount,
	})

	reject := func(err error, msg string) error {
		p.logFailure(log, err, msg)
		recordRejectionEvent(ctx, vault, "deposit", err)
		return err
	}

	isStrict := p.isStrict(ctx)
	if isStrict {
		if args.Amount == 0 {
			return reject(ErrInvalidAmount, "deposit amount is zero")
		}

		if maxAmount := p.conf.maxDepositQuarks.Get(ctx); maxAmount > 0 && args.Amount > maxAmount {
			return reject(ErrInvalidAmount, "deposit amount exceeds maximum")
		}
	}

	unlock, err := p.lockVault(ctx, args.Vault)
	if err != nil {
		log.WithError(err).Warn("failure locking vault")
		return err
	}
	defer unlock()

	record, err := p.store.Get(ctx, vault)
	if err != nil {
		return reject(err, "failure getting vault state")
	}

	// Checked up front so an overflowing deposit never moves tokens
	if record.TotalDeposited > math.MaxUint64-args.Amount {
		return reject(ErrOverflow, "total deposited would overflow")
	}

	if isStrict {
		signingAuthority, err := vault_program.GetSigningAuthority(args.Vault, record.Bump)
		if err != nil {
			return reject(ErrInvalidBump, "stored bump does not derive a signing authority")
		}

		err = p.token.ValidateOwner(ctx, args.Destination, signingAuthority)
		if err == token.ErrInvalidOwner {
			return reject(ErrInvalidAccountOwner, "destination is not owned by the vault")
		} else if err != nil {
			return reject(err, "failure validating destination owner")
		}
	}

	err = p.token.Transfer(ctx, args.Source, args.Destination, solana.WalletSigner(args.Depositor), args.Amount)
	if err != nil {
		return reject(err, "failure transferring deposit")
	}

	totalDeposited, err := p.store.AddToTotalDeposited(ctx, vault, args.Amount)
	if err != nil {
		// Tokens have moved but the counter didn't. With the vault locked
		// this should never happen.
		log.WithError(err).Error("failure updating total deposited after transfer")
		recordRejectionEvent(ctx, vault, "deposit", err)
		return err
	}

	log.WithField("total_deposited", totalDeposited).Debug("deposit completed")
	recordDepositEvent(ctx, vault, depositor, args.Amount, totalDeposited)

	return nil
}
