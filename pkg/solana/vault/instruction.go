package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitialize
	InstructionTypeDeposit
	InstructionTypeWithdraw
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypeDeposit:
		return "deposit"
	case InstructionTypeWithdraw:
		return "withdraw"
	}
	return "unknown"
}

// GetInstructionType identifies a vault instruction by its discriminator.
func GetInstructionType(ix solana.Instruction) InstructionType {
	switch {
	case hasDiscriminator(ix.Data, initializeInstructionDiscriminator):
		return InstructionTypeInitialize
	case hasDiscriminator(ix.Data, depositInstructionDiscriminator):
		return InstructionTypeDeposit
	case hasDiscriminator(ix.Data, withdrawInstructionDiscriminator):
		return InstructionTypeWithdraw
	}
	return InstructionTypeUnknown
}

// DecompiledInstruction is a parsed vault instruction. Exactly one of the
// variant fields is set, matching Type.
type DecompiledInstruction struct {
	Type InstructionType

	InitializeArgs     *InitializeInstructionArgs
	InitializeAccounts *InitializeInstructionAccounts

	DepositArgs     *DepositInstructionArgs
	DepositAccounts *DepositInstructionAccounts

	WithdrawArgs     *WithdrawInstructionArgs
	WithdrawAccounts *WithdrawInstructionAccounts
}

// State returns the state account referenced by the instruction.
func (d *DecompiledInstruction) State() ed25519.PublicKey {
	switch d.Type {
	case InstructionTypeInitialize:
		return d.InitializeAccounts.State
	case InstructionTypeDeposit:
		return d.DepositAccounts.State
	case InstructionTypeWithdraw:
		return d.WithdrawAccounts.State
	}
	return nil
}

// DecompileInstruction parses any vault instruction targeting program.
func DecompileInstruction(program ed25519.PublicKey, ix solana.Instruction) (*DecompiledInstruction, error) {
	if !ix.IsProgram(program) {
		return nil, ErrInvalidProgram
	}

	res := &DecompiledInstruction{Type: GetInstructionType(ix)}

	var err error
	switch res.Type {
	case InstructionTypeInitialize:
		res.InitializeArgs, res.InitializeAccounts, err = InitializeInstructionFromSolana(ix)
	case InstructionTypeDeposit:
		res.DepositArgs, res.DepositAccounts, err = DepositInstructionFromSolana(ix)
	case InstructionTypeWithdraw:
		res.WithdrawArgs, res.WithdrawAccounts, err = WithdrawInstructionFromSolana(ix)
	default:
		return nil, ErrInvalidInstructionData
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
