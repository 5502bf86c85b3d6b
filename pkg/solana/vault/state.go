package vault_program

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana/binary"
)

var stateAccountDiscriminator = []byte{
	216, 146, 107, 94, 104, 75, 182, 177,
}

const (
	StateAccountSize = (discriminatorSize +
		32 + // authority
		1 + // bump
		8) // total_deposited
)

// StateAccount is the on-chain layout of a vault's state.
type StateAccount struct {
	Authority      ed25519.PublicKey
	Bump           uint8
	TotalDeposited uint64
}

func (obj *StateAccount) Marshal() []byte {
	w := binary.NewWriter(StateAccountSize)
	w.Bytes(stateAccountDiscriminator)
	w.Key32(obj.Authority)
	w.Uint8(obj.Bump)
	w.Uint64(obj.TotalDeposited)
	return w.Finish()
}

func (obj *StateAccount) Unmarshal(data []byte) error {
	if len(data) != StateAccountSize {
		return ErrInvalidAccountData
	}
	if !hasDiscriminator(data, stateAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	r := binary.NewReader(data[discriminatorSize:])
	obj.Authority = r.Key32()
	obj.Bump = r.Uint8()
	obj.TotalDeposited = r.Uint64()

	return r.Err()
}
