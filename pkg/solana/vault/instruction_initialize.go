package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

var initializeInstructionDiscriminator = []byte{
	175, 175, 109, 31, 13, 152, 155, 237,
}

const (
	InitializeInstructionArgsSize = 1 // bump

	initializeInstructionAccountCount = 3
)

type InitializeInstructionArgs struct {
	Bump uint8
}

type InitializeInstructionAccounts struct {
	State     ed25519.PublicKey
	Authority ed25519.PublicKey
}

func NewInitializeInstruction(
	program ed25519.PublicKey,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	w := binary.NewWriter(discriminatorSize + InitializeInstructionArgsSize)
	w.Bytes(initializeInstructionDiscriminator)
	w.Uint8(args.Bump)

	return solana.NewInstruction(
		program,
		w.Finish(),
		solana.NewAccountMeta(accounts.State, false),
		solana.NewAccountMeta(accounts.Authority, true),
		solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
	)
}

func InitializeInstructionFromSolana(ix solana.Instruction) (*InitializeInstructionArgs, *InitializeInstructionAccounts, error) {
	if !hasDiscriminator(ix.Data, initializeInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != discriminatorSize+InitializeInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) != initializeInstructionAccountCount {
		return nil, nil, ErrInvalidAccounts
	}
	if !ix.Accounts[2].PublicKey.Equal(SYSTEM_PROGRAM_ID) {
		return nil, nil, ErrInvalidAccounts
	}

	r := binary.NewReader(ix.Data[discriminatorSize:])
	args := &InitializeInstructionArgs{
		Bump: r.Uint8(),
	}

	accounts := &InitializeInstructionAccounts{
		State:     ix.Accounts[0].PublicKey,
		Authority: ix.Accounts[1].PublicKey,
	}

	return args, accounts, r.Err()
}
