package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/token"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestProcess_HappyPath(t *testing.T) {
	env := setup(t, &testOverrides{})

	user := env.newUser(t, 100)

	initializeIx := vault_program.NewInitializeInstruction(
		env.vault,
		&vault_program.InitializeInstructionAccounts{
			State:     env.signingAuthority,
			Authority: env.authority,
		},
		&vault_program.InitializeInstructionArgs{
			Bump: env.bump,
		},
	)
	require.NoError(t, env.program.Process(env.ctx, env.vault, initializeIx, env.authority))

	depositIx := vault_program.NewDepositInstruction(
		env.vault,
		&vault_program.DepositInstructionAccounts{
			State:             env.signingAuthority,
			User:              user.owner,
			UserTokenAccount:  user.tokens,
			VaultTokenAccount: env.vaultTokens,
		},
		&vault_program.DepositInstructionArgs{
			Amount: 100,
		},
	)
	require.NoError(t, env.program.Process(env.ctx, env.vault, depositIx, user.owner))
	env.assertTotalDeposited(t, 100)

	withdrawIx := vault_program.NewWithdrawInstruction(
		env.vault,
		&vault_program.WithdrawInstructionAccounts{
			State:             env.signingAuthority,
			Authority:         env.authority,
			UserTokenAccount:  env.authorityTokens,
			VaultTokenAccount: env.vaultTokens,
		},
		&vault_program.WithdrawInstructionArgs{
			Amount: 100,
		},
	)
	require.NoError(t, env.program.Process(env.ctx, env.vault, withdrawIx, env.authority))
	env.assertBalance(t, env.authorityTokens, 100)

	intruder := testutil.NewRandomKey(t)
	withdrawIx = vault_program.NewWithdrawInstruction(
		env.vault,
		&vault_program.WithdrawInstructionAccounts{
			State:             env.signingAuthority,
			Authority:         intruder,
			UserTokenAccount:  env.authorityTokens,
			VaultTokenAccount: env.vaultTokens,
		},
		&vault_program.WithdrawInstructionArgs{
			Amount: 1,
		},
	)
	err := env.program.Process(env.ctx, env.vault, withdrawIx, intruder)
	assert.Equal(t, ErrUnauthorized, err)

	code, ok := ToProgramError(err)
	require.True(t, ok)
	assert.Equal(t, vault_program.ErrorUnauthorized, code)
}

func TestProcess_MissingSignature(t *testing.T) {
	env := setup(t, &testOverrides{})
	env.initialize(t)

	user := env.newUser(t, 100)

	depositIx := vault_program.NewDepositInstruction(
		env.vault,
		&vault_program.DepositInstructionAccounts{
			State:             env.signingAuthority,
			User:              user.owner,
			UserTokenAccount:  user.tokens,
			VaultTokenAccount: env.vaultTokens,
		},
		&vault_program.DepositInstructionArgs{
			Amount: 10,
		},
	)

	err := env.program.Process(env.ctx, env.vault, depositIx)
	assert.Equal(t, ErrMissingSignature, err)

	err = env.program.Process(env.ctx, env.vault, depositIx, env.authority)
	assert.Equal(t, ErrMissingSignature, err)

	assert.Equal(t, 0, env.token.TransferCount())
	env.assertTotalDeposited(t, 0)
}

func TestProcess_InvalidStateAccount(t *testing.T) {
	env := setup(t, &testOverrides{})

	initializeIx := vault_program.NewInitializeInstruction(
		env.vault,
		&vault_program.InitializeInstructionAccounts{
			State:     testutil.NewRandomKey(t),
			Authority: env.authority,
		},
		&vault_program.InitializeInstructionArgs{
			Bump: env.bump,
		},
	)

	err := env.program.Process(env.ctx, env.vault, initializeIx, env.authority)
	assert.Equal(t, ErrInvalidStateAccount, err)

	_, err = env.program.GetState(env.ctx, env.vault)
	assert.Equal(t, ErrNotFound, err)
}

func TestProcess_IncorrectProgram(t *testing.T) {
	env := setup(t, &testOverrides{})

	initializeIx := vault_program.NewInitializeInstruction(
		env.vault,
		&vault_program.InitializeInstructionAccounts{
			State:     env.signingAuthority,
			Authority: env.authority,
		},
		&vault_program.InitializeInstructionArgs{
			Bump: env.bump,
		},
	)

	err := env.program.Process(env.ctx, testutil.NewRandomKey(t), initializeIx, env.authority)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestProcess_UnknownInstruction(t *testing.T) {
	env := setup(t, &testOverrides{})

	ix := token.Transfer(testutil.NewRandomKey(t), testutil.NewRandomKey(t), env.authority, 10)
	ix.Program = env.vault

	err := env.program.Process(env.ctx, env.vault, ix, env.authority)
	assert.Equal(t, vault_program.ErrInvalidInstructionData, err)
}
