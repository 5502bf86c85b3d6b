package vault

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	vault_data "github.com/code-payments/code-vault/pkg/code/data/vault"
	vault_data_memory "github.com/code-payments/code-vault/pkg/code/data/vault/memory"
	"github.com/code-payments/code-vault/pkg/lock"
	token_memory "github.com/code-payments/code-vault/pkg/solana/token/memory"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
	"github.com/code-payments/code-vault/pkg/testutil"
)

type testEnv struct {
	ctx     context.Context
	program *Program
	store   vault_data.Store
	token   *token_memory.Program

	mint ed25519.PublicKey

	vault            ed25519.PublicKey
	bump             uint8
	signingAuthority ed25519.PublicKey
	vaultTokens      ed25519.PublicKey

	authority       ed25519.PublicKey
	authorityTokens ed25519.PublicKey
}

type testUser struct {
	owner  ed25519.PublicKey
	tokens ed25519.PublicKey
}

func setup(t *testing.T, overrides *testOverrides) *testEnv {
	return setupWithLocks(t, overrides, nil)
}

func setupWithLocks(t *testing.T, overrides *testOverrides, locks lock.Manager) *testEnv {
	ctx := context.Background()

	store := vault_data_memory.New()
	tokenProgram := token_memory.New()

	env := &testEnv{
		ctx:   ctx,
		store: store,
		token: tokenProgram,
		mint:  testutil.NewRandomKey(t),

		vault:     testutil.NewRandomKey(t),
		authority: testutil.NewRandomKey(t),
	}

	var err error
	env.signingAuthority, env.bump, err = vault_program.GetStateAddress(env.vault)
	require.NoError(t, err)

	env.vaultTokens = testutil.NewRandomKey(t)
	require.NoError(t, tokenProgram.CreateAccount(ctx, env.vaultTokens, env.mint, env.signingAuthority, 0))

	env.authorityTokens = testutil.NewRandomKey(t)
	require.NoError(t, tokenProgram.CreateAccount(ctx, env.authorityTokens, env.mint, env.authority, 0))

	env.program = New(store, tokenProgram, locks, withManualTestOverrides(overrides))

	return env
}

func (e *testEnv) initialize(t *testing.T) {
	require.NoError(t, e.program.Initialize(e.ctx, &InitializeArgs{
		Vault:     e.vault,
		Authority: e.authority,
		Bump:      e.bump,
	}))
}

func (e *testEnv) newUser(t *testing.T, balance uint64) *testUser {
	user := &testUser{
		owner:  testutil.NewRandomKey(t),
		tokens: testutil.NewRandomKey(t),
	}
	require.NoError(t, e.token.CreateAccount(e.ctx, user.tokens, e.mint, user.owner, balance))
	return user
}

func (e *testEnv) depositArgs(user *testUser, amount uint64) *DepositArgs {
	return &DepositArgs{
		Vault:       e.vault,
		Depositor:   user.owner,
		Source:      user.tokens,
		Destination: e.vaultTokens,
		Amount:      amount,
	}
}

func (e *testEnv) withdrawArgs(caller, destination ed25519.PublicKey, amount uint64) *WithdrawArgs {
	return &WithdrawArgs{
		Vault:       e.vault,
		Caller:      caller,
		Destination: destination,
		Source:      e.vaultTokens,
		Amount:      amount,
	}
}

func (e *testEnv) assertTotalDeposited(t *testing.T, expected uint64) {
	record, err := e.store.Get(e.ctx, base58.Encode(e.vault))
	require.NoError(t, err)
	require.Equal(t, expected, record.TotalDeposited)
}

func (e *testEnv) assertBalance(t *testing.T, account ed25519.PublicKey, expected uint64) {
	balance, err := e.token.GetBalance(e.ctx, account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}

// findOnCurveBump returns a bump that doesn't derive a signing authority for
// the vault
func findOnCurveBump(t *testing.T, vault ed25519.PublicKey) uint8 {
	for bump := 255; bump >= 0; bump-- {
		if _, err := vault_program.GetSigningAuthority(vault, uint8(bump)); err != nil {
			return uint8(bump)
		}
	}
	t.Fatal("no on curve bump found")
	return 0
}

// findOffCurveNonCanonicalBump returns a bump below the canonical one that
// still derives a signing authority for the vault
func findOffCurveNonCanonicalBump(t *testing.T, vault ed25519.PublicKey, canonical uint8) uint8 {
	for bump := int(canonical) - 1; bump >= 0; bump-- {
		if _, err := vault_program.GetSigningAuthority(vault, uint8(bump)); err == nil {
			return uint8(bump)
		}
	}
	t.Fatal("no off curve non-canonical bump found")
	return 0
}
