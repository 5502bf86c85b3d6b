package vault

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/solana/token"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

type WithdrawArgs struct {
	// The vault being withdrawn from
	Vault ed25519.PublicKey

	// The signer requesting the withdrawal, who must be the vault authority
	Caller ed25519.PublicKey

	// The token account receiving the withdrawal
	Destination ed25519.PublicKey

	// The vault's token account
	Source ed25519.PublicKey

	Amount uint64
}

// Withdraw moves tokens out of the vault on behalf of its authority. The
// transfer is authorized by the vault's program derived signing authority.
// Vault state is never modified.
func (p *Program) Withdraw(ctx context.Context, args *WithdrawArgs) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Withdraw")
	defer tracer.End()

	tracer.AddAttributes(map[string]interface{}{
		"amount": args.Amount,
	})

	err := p.withdraw(ctx, args)
	tracer.OnError(err)
	return err
}

func (p *Program) withdraw(ctx context.Context, args *WithdrawArgs) error {
	if err := validatePublicKeys(args.Vault, args.Caller, args.Destination, args.Source); err != nil {
		return err
	}

	vault := base58.Encode(args.Vault)
	destination := base58.Encode(args.Destination)

	log := p.log.WithFields(logrus.Fields{
		"method":      "Withdraw",
		"vault":       vault,
		"caller":      base58.Encode(args.Caller),
		"source":      base58.Encode(args.Source),
		"destination": destination,
		"amount":      args.Amount,
	})

	reject := func(err error, msg string) error {
		p.logFailure(log, err, msg)
		recordRejectionEvent(ctx, vault, "withdraw", err)
		return err
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

	state, err := record.ToStateAccount()
	if err != nil {
		log.WithError(err).Warn("failure converting vault record")
		return err
	}

	if !bytes.Equal(args.Caller, state.Authority) {
		return reject(ErrUnauthorized, "caller is not the vault authority")
	}

	signer := vault_program.GetSignerSeeds(args.Vault, state.Bump)

	if p.isStrict(ctx) {
		signingAuthority, err := signer.Address()
		if err != nil {
			return reject(ErrInvalidBump, "stored bump does not derive a signing authority")
		}

		err = p.token.ValidateOwner(ctx, args.Source, signingAuthority)
		if err == token.ErrInvalidOwner {
			return reject(ErrInvalidAccountOwner, "source is not owned by the vault")
		} else if err != nil {
			return reject(err, "failure validating source owner")
		}

		balance, err := p.token.GetBalance(ctx, args.Source)
		if err != nil {
			return reject(err, "failure getting vault balance")
		}

		if args.Amount > balance {
			return reject(ErrInsufficientBalance, "withdrawal exceeds vault balance")
		}
	}

	err = p.token.Transfer(ctx, args.Source, args.Destination, signer, args.Amount)
	if err != nil {
		return reject(err, "failure transferring withdrawal")
	}

	log.Debug("withdrawal completed")
	recordWithdrawalEvent(ctx, vault, destination, args.Amount)

	return nil
}
