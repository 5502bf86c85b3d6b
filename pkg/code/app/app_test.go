package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/code/vault"
	token_memory "github.com/code-payments/code-vault/pkg/solana/token/memory"
	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestNew_MemoryStore(t *testing.T) {
	defer testutil.DisableLogging()()

	token := token_memory.New()

	config := defaultConfig
	app, err := New(&config, WithTokenProgram(token))
	require.NoError(t, err)
	defer app.Close()

	ctx := app.Context(context.Background())

	program := testutil.NewRandomKey(t)
	authority := testutil.NewRandomKey(t)
	signingAuthority, bump, err := vault_program.GetStateAddress(program)
	require.NoError(t, err)

	require.NoError(t, app.Program.Initialize(ctx, &vault.InitializeArgs{
		Vault:     program,
		Authority: authority,
		Bump:      bump,
	}))

	mint := testutil.NewRandomKey(t)
	vaultTokens := testutil.NewRandomKey(t)
	require.NoError(t, token.CreateAccount(ctx, vaultTokens, mint, signingAuthority, 0))

	depositor := testutil.NewRandomKey(t)
	depositorTokens := testutil.NewRandomKey(t)
	require.NoError(t, token.CreateAccount(ctx, depositorTokens, mint, depositor, 100))

	require.NoError(t, app.Program.Deposit(ctx, &vault.DepositArgs{
		Vault:       program,
		Depositor:   depositor,
		Source:      depositorTokens,
		Destination: vaultTokens,
		Amount:      100,
	}))

	state, err := app.Program.GetState(ctx, program)
	require.NoError(t, err)
	assert.EqualValues(t, 100, state.TotalDeposited)

	count, err := app.Store.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Idempotent
	app.Close()
}

func TestNew_DefaultTokenProgram(t *testing.T) {
	defer testutil.DisableLogging()()

	config := defaultConfig
	app, err := New(&config)
	require.NoError(t, err)
	defer app.Close()

	_, ok := app.Token.(*token_memory.Program)
	assert.True(t, ok)
}

func TestNew_InvalidConfig(t *testing.T) {
	config := defaultConfig
	config.StoreType = "redis"

	_, err := New(&config)
	assert.Error(t, err)
}
