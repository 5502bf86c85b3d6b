package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

var depositInstructionDiscriminator = []byte{
	242, 35, 198, 137, 82, 225, 242, 182,
}

const (
	DepositInstructionArgsSize = 8 // amount

	depositInstructionAccountCount = 5
)

type DepositInstructionArgs struct {
	Amount uint64
}

type DepositInstructionAccounts struct {
	State             ed25519.PublicKey
	User              ed25519.PublicKey
	UserTokenAccount  ed25519.PublicKey
	VaultTokenAccount ed25519.PublicKey
}

func NewDepositInstruction(
	program ed25519.PublicKey,
	accounts *DepositInstructionAccounts,
	args *DepositInstructionArgs,
) solana.Instruction {
	w := binary.NewWriter(discriminatorSize + DepositInstructionArgsSize)
	w.Bytes(depositInstructionDiscriminator)
	w.Uint64(args.Amount)

	return solana.NewInstruction(
		program,
		w.Finish(),
		solana.NewAccountMeta(accounts.State, false),
		solana.NewAccountMeta(accounts.User, true),
		solana.NewAccountMeta(accounts.UserTokenAccount, false),
		solana.NewAccountMeta(accounts.VaultTokenAccount, false),
		solana.NewReadonlyAccountMeta(SPL_TOKEN_PROGRAM_ID, false),
	)
}

func DepositInstructionFromSolana(ix solana.Instruction) (*DepositInstructionArgs, *DepositInstructionAccounts, error) {
	if !hasDiscriminator(ix.Data, depositInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != discriminatorSize+DepositInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) != depositInstructionAccountCount {
		return nil, nil, ErrInvalidAccounts
	}
	if !ix.Accounts[4].PublicKey.Equal(SPL_TOKEN_PROGRAM_ID) {
		return nil, nil, ErrInvalidAccounts
	}

	r := binary.NewReader(ix.Data[discriminatorSize:])
	args := &DepositInstructionArgs{
		Amount: r.Uint64(),
	}

	accounts := &DepositInstructionAccounts{
		State:             ix.Accounts[0].PublicKey,
		User:              ix.Accounts[1].PublicKey,
		UserTokenAccount:  ix.Accounts[2].PublicKey,
		VaultTokenAccount: ix.Accounts[3].PublicKey,
	}

	return args, accounts, r.Err()
}
