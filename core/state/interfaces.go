package state

import (
	"context"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
)

// Reader is the read capability handed to the execution engine. Reads are total
// for storage, nonces and class hashes at an address: a value nobody wrote is zero.
// Class and CompiledClassHash report ErrUndeclaredClassHash instead.
type Reader interface {
	ContractStorage(addr *felt.Address, key *felt.StorageKey) (felt.Felt, error)
	ContractNonce(addr *felt.Address) (felt.Felt, error)
	ContractClassHash(addr *felt.Address) (felt.ClassHash, error)
	Class(classHash *felt.ClassHash) (core.Class, error)
	CompiledClassHash(classHash *felt.ClassHash) (felt.CasmClassHash, error)
}

// Writer is the read-write capability used while executing transactions.
type Writer interface {
	Reader

	SetStorage(addr *felt.Address, key *felt.StorageKey, value *felt.Felt) error
	IncrementNonce(addr *felt.Address) error
	SetClassHash(addr *felt.Address, classHash *felt.ClassHash) error
	SetContractClass(classHash *felt.ClassHash, class core.Class) error
	SetCompiledClassHash(classHash *felt.ClassHash, casmHash *felt.CasmClassHash) error

	// StateDiff lists every change written since the last commit.
	StateDiff() *core.StateDiff
	AddVisitedPCs(classHash *felt.ClassHash, pcs []uint64)
}

// Origin answers reads the overlay cannot, from a remote network pinned to a
// single block. Implementations must be safe to share between state instances.
//
//go:generate mockgen -destination=../../mocks/mock_origin.go -package=mocks github.com/NethermindEth/juno-devnet/core/state Origin
type Origin interface {
	StorageAt(ctx context.Context, addr *felt.Address, key *felt.StorageKey) (felt.Felt, error)
	Nonce(ctx context.Context, addr *felt.Address) (felt.Felt, error)
	ClassHashAt(ctx context.Context, addr *felt.Address) (felt.ClassHash, error)
	Class(ctx context.Context, classHash *felt.ClassHash) (core.Class, error)
}
