package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

var withdrawInstructionDiscriminator = []byte{
	183, 18, 70, 156, 148, 109, 161, 34,
}

const (
	WithdrawInstructionArgsSize = 8 // amount

	withdrawInstructionAccountCount = 5
)

type WithdrawInstructionArgs struct {
	Amount uint64
}

type WithdrawInstructionAccounts struct {
	State             ed25519.PublicKey
	Authority         ed25519.PublicKey
	UserTokenAccount  ed25519.PublicKey
	VaultTokenAccount ed25519.PublicKey
}

func NewWithdrawInstruction(
	program ed25519.PublicKey,
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstructionArgs,
) solana.Instruction {
	w := binary.NewWriter(discriminatorSize + WithdrawInstructionArgsSize)
	w.Bytes(withdrawInstructionDiscriminator)
	w.Uint64(args.Amount)

	return solana.NewInstruction(
		program,
		w.Finish(),
		solana.NewAccountMeta(accounts.State, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, true),
		solana.NewAccountMeta(accounts.UserTokenAccount, false),
		solana.NewAccountMeta(accounts.VaultTokenAccount, false),
		solana.NewReadonlyAccountMeta(SPL_TOKEN_PROGRAM_ID, false),
	)
}

func WithdrawInstructionFromSolana(ix solana.Instruction) (*WithdrawInstructionArgs, *WithdrawInstructionAccounts, error) {
	if !hasDiscriminator(ix.Data, withdrawInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != discriminatorSize+WithdrawInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) != withdrawInstructionAccountCount {
		return nil, nil, ErrInvalidAccounts
	}
	if !ix.Accounts[4].PublicKey.Equal(SPL_TOKEN_PROGRAM_ID) {
		return nil, nil, ErrInvalidAccounts
	}

	r := binary.NewReader(ix.Data[discriminatorSize:])
	args := &WithdrawInstructionArgs{
		Amount: r.Uint64(),
	}

	accounts := &WithdrawInstructionAccounts{
		State:             ix.Accounts[0].PublicKey,
		Authority:         ix.Accounts[1].PublicKey,
		UserTokenAccount:  ix.Accounts[2].PublicKey,
		VaultTokenAccount: ix.Accounts[3].PublicKey,
	}

	return args, accounts, r.Err()
}
