package memory

import (
	"context"
	"crypto/ed25519"
	"math"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/token"
)

// Program is an in memory token program. Accounts are held in their on-chain
// layout and every transfer is executed from an encoded Transfer instruction.
type Program struct {
	mu       sync.Mutex
	accounts map[string][]byte

	transferCalls int
	transferErr   error
}

// New returns a new in memory token Program
func New() *Program {
	return &Program{
		accounts: make(map[string][]byte),
	}
}

// CreateAccount creates an initialized token account
func (p *Program) CreateAccount(_ context.Context, address, mint, owner ed25519.PublicKey, amount uint64) error {
	if len(address) != ed25519.PublicKeySize || len(mint) != ed25519.PublicKeySize || len(owner) != ed25519.PublicKeySize {
		return solana.ErrInvalidPublicKey
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := base58.Encode(address)
	if _, ok := p.accounts[key]; ok {
		return token.ErrAccountExists
	}

	account := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	p.accounts[key] = account.Marshal()
	return nil
}

// FreezeAccount marks an existing account as frozen
func (p *Program) FreezeAccount(_ context.Context, address ed25519.PublicKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, err := p.load(address)
	if err != nil {
		return err
	}
	account.State = token.AccountStateFrozen
	p.store(address, account)
	return nil
}

// GetAccount returns the token account at address
func (p *Program) GetAccount(_ context.Context, address ed25519.PublicKey) (*token.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.load(address)
}

// GetBalance returns the balance of the token account at address
func (p *Program) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	account, err := p.GetAccount(ctx, address)
	if err != nil {
		return 0, err
	}
	return account.Amount, nil
}

// ValidateOwner checks that account is owned by owner
func (p *Program) ValidateOwner(ctx context.Context, address, owner ed25519.PublicKey) error {
	account, err := p.GetAccount(ctx, address)
	if err != nil {
		return err
	}
	if !account.Owner.Equal(owner) {
		return token.ErrInvalidOwner
	}
	return nil
}

// Transfer moves amount tokens from source to destination. The authority must
// resolve to the source account's owner.
func (p *Program) Transfer(ctx context.Context, source, destination ed25519.PublicKey, authority solana.Signer, amount uint64) error {
	p.mu.Lock()
	p.transferCalls++
	induced := p.transferErr
	p.transferErr = nil
	p.mu.Unlock()

	if induced != nil {
		return induced
	}

	signer, err := authority.Address()
	if err != nil {
		return errors.Wrap(err, "error resolving transfer authority")
	}

	return p.Execute(ctx, token.Transfer(source, destination, signer, amount), signer)
}

// Execute runs a token program instruction that was signed by signers
func (p *Program) Execute(_ context.Context, ix solana.Instruction, signers ...ed25519.PublicKey) error {
	transfer, err := token.DecompileTransfer(ix)
	if err != nil {
		return err
	}

	var signed bool
	for _, signer := range signers {
		if signer.Equal(transfer.Owner) {
			signed = true
			break
		}
	}
	if !signed {
		return token.ErrUnauthorized
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	source, err := p.load(transfer.Source)
	if err != nil {
		return err
	}
	destination, err := p.load(transfer.Destination)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || destination.State == token.AccountStateFrozen {
		return token.ErrAccountFrozen
	}
	if !source.Mint.Equal(destination.Mint) {
		return token.ErrAccountMismatch
	}
	if !source.Owner.Equal(transfer.Owner) {
		return token.ErrUnauthorized
	}
	if source.Amount < transfer.Amount {
		return token.ErrInsufficientFunds
	}

	// Self transfers are a no-op once validated
	if transfer.Source.Equal(transfer.Destination) {
		return nil
	}

	if destination.Amount > math.MaxUint64-transfer.Amount {
		return token.ErrAccountOverflow
	}

	source.Amount -= transfer.Amount
	destination.Amount += transfer.Amount

	p.store(transfer.Source, source)
	p.store(transfer.Destination, destination)
	return nil
}

// TransferCount returns the number of Transfer calls made
func (p *Program) TransferCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.transferCalls
}

// FailNextTransfer makes the next Transfer call fail with err
func (p *Program) FailNextTransfer(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transferErr = err
}

// Reset removes all accounts and counters
func (p *Program) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.accounts = make(map[string][]byte)
	p.transferCalls = 0
	p.transferErr = nil
}

func (p *Program) load(address ed25519.PublicKey) (*token.Account, error) {
	data, ok := p.accounts[base58.Encode(address)]
	if !ok {
		return nil, token.ErrAccountNotFound
	}

	var account token.Account
	if !account.Unmarshal(data) || account.State == token.AccountStateUninitialized {
		return nil, token.ErrInvalidTokenAccount
	}
	return &account, nil
}

func (p *Program) store(address ed25519.PublicKey, account *token.Account) {
	p.accounts[base58.Encode(address)] = account.Marshal()
}
