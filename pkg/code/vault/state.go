package vault

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/metrics"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

// GetState returns the current state of a vault
func (p *Program) GetState(ctx context.Context, vault ed25519.PublicKey) (*vault_program.StateAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetState")
	defer tracer.End()

	if err := validatePublicKeys(vault); err != nil {
		return nil, err
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "GetState",
		"vault":  base58.Encode(vault),
	})

	record, err := p.store.Get(ctx, base58.Encode(vault))
	if err != nil {
		p.logFailure(log, err, "failure getting vault state")
		tracer.OnError(err)
		return nil, err
	}

	state, err := record.ToStateAccount()
	if err != nil {
		log.WithError(err).Warn("failure converting vault record")
		tracer.OnError(err)
		return nil, err
	}
	return state, nil
}
