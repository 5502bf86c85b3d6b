package vault

import (
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	vault_program "github.com/code-payments/code-vault/pkg/solana/vault"
)

var (
	ErrAlreadyInitialized = errors.New("vault state already initialized")
	ErrNotFound           = errors.New("vault state not found")
	ErrOverflow           = errors.New("total deposited would overflow")
	ErrInvalidRecord      = errors.New("invalid vault record")
)

// Record is the persisted state of a single vault. The vault is identified by
// its program address. Authority and Bump are fixed at creation and
// TotalDeposited only ever grows.
type Record struct {
	Id uint64

	Vault     string
	Authority string
	Bump      uint8

	TotalDeposited uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if err := validateAddress(r.Vault); err != nil {
		return errors.Wrap(err, "invalid vault")
	}

	if err := validateAddress(r.Authority); err != nil {
		return errors.Wrap(err, "invalid authority")
	}

	return nil
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Vault:     r.Vault,
		Authority: r.Authority,
		Bump:      r.Bump,

		TotalDeposited: r.TotalDeposited,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Vault = r.Vault
	dst.Authority = r.Authority
	dst.Bump = r.Bump

	dst.TotalDeposited = r.TotalDeposited

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}

// ToStateAccount returns the on-chain view of the record
func (r *Record) ToStateAccount() (*vault_program.StateAccount, error) {
	authority, err := base58.Decode(r.Authority)
	if err != nil {
		return nil, err
	}

	return &vault_program.StateAccount{
		Authority:      authority,
		Bump:           r.Bump,
		TotalDeposited: r.TotalDeposited,
	}, nil
}

func validateAddress(address string) error {
	if len(address) == 0 {
		return ErrInvalidRecord
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return err
	}
	if len(decoded) != 32 {
		return ErrInvalidRecord
	}
	return nil
}
