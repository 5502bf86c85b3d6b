package vault

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/solana"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

// Process executes a vault instruction for the vault at program. signers are
// the accounts whose signatures were verified on the enclosing transaction.
func (p *Program) Process(ctx context.Context, program ed25519.PublicKey, ix solana.Instruction, signers ...ed25519.PublicKey) error {
	if err := validatePublicKeys(program); err != nil {
		return err
	}

	if !ix.IsProgram(program) {
		return solana.ErrIncorrectProgram
	}

	instructionType := vault_program.GetInstructionType(ix)

	ctx, end := metrics.StartTransaction(ctx, "vault "+instructionType.String())
	defer end()

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Process")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method":      "Process",
		"vault":       base58.Encode(program),
		"instruction": instructionType.String(),
	})

	err := p.process(ctx, program, ix, signers)
	if err != nil {
		p.logFailure(log, err, "failure processing instruction")
		tracer.OnError(err)
	}
	return err
}

func (p *Program) process(ctx context.Context, program ed25519.PublicKey, ix solana.Instruction, signers []ed25519.PublicKey) error {
	decompiled, err := vault_program.DecompileInstruction(program, ix)
	if err != nil {
		return err
	}

	stateAddress, _, err := vault_program.GetStateAddress(program)
	if err != nil {
		return err
	}
	if !bytes.Equal(decompiled.State(), stateAddress) {
		return ErrInvalidStateAccount
	}

	for _, required := range ix.RequiredSigners() {
		if !containsKey(signers, required) {
			return ErrMissingSignature
		}
	}

	switch decompiled.Type {
	case vault_program.InstructionTypeInitialize:
		return p.Initialize(ctx, &InitializeArgs{
			Vault:     program,
			Authority: decompiled.InitializeAccounts.Authority,
			Bump:      decompiled.InitializeArgs.Bump,
		})
	case vault_program.InstructionTypeDeposit:
		return p.Deposit(ctx, &DepositArgs{
			Vault:       program,
			Depositor:   decompiled.DepositAccounts.User,
			Source:      decompiled.DepositAccounts.UserTokenAccount,
			Destination: decompiled.DepositAccounts.VaultTokenAccount,
			Amount:      decompiled.DepositArgs.Amount,
		})
	case vault_program.InstructionTypeWithdraw:
		return p.Withdraw(ctx, &WithdrawArgs{
			Vault:       program,
			Caller:      decompiled.WithdrawAccounts.Authority,
			Destination: decompiled.WithdrawAccounts.UserTokenAccount,
			Source:      decompiled.WithdrawAccounts.VaultTokenAccount,
			Amount:      decompiled.WithdrawArgs.Amount,
		})
	}
	return vault_program.ErrInvalidInstructionData
}

func containsKey(keys []ed25519.PublicKey, target ed25519.PublicKey) bool {
	for _, key := range keys {
		if bytes.Equal(key, target) {
			return true
		}
	}
	return false
}
