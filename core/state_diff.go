package core

import (
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/encoder"
)

// StateDiff is every state change accumulated since a checkpoint. Entries keep
// the order in which they were first written. Importing encoder/registry is
// required before encoding a diff that declares classes.
type StateDiff struct {
	StorageDiffs        []StorageDiff
	Nonces              []NonceDiff
	DeployedContracts   []DeployedContract
	DeclaredClasses     []DeclaredClass
	CompiledClassHashes []CompiledClassHash
}

type StorageDiff struct {
	Address        felt.Address
	StorageEntries []StorageEntry
}

type StorageEntry struct {
	Key   felt.StorageKey
	Value felt.Felt
}

type NonceDiff struct {
	Address felt.Address
	Nonce   felt.Felt
}

type DeployedContract struct {
	Address   felt.Address
	ClassHash felt.ClassHash
}

type DeclaredClass struct {
	ClassHash felt.ClassHash
	Class     Class
}

type CompiledClassHash struct {
	ClassHash         felt.ClassHash
	CompiledClassHash felt.CasmClassHash
}

// Length returns the number of individual changes in the diff
func (d *StateDiff) Length() uint64 {
	var length int
	for _, diff := range d.StorageDiffs {
		length += len(diff.StorageEntries)
	}
	length += len(d.Nonces)
	length += len(d.DeployedContracts)
	length += len(d.DeclaredClasses)
	length += len(d.CompiledClassHashes)
	return uint64(length)
}

func (d *StateDiff) IsEmpty() bool {
	return d.Length() == 0
}

// encodedStateDiff drops the BinaryMarshaler methods so the encoder does not recurse
type encodedStateDiff StateDiff

func (d *StateDiff) MarshalBinary() ([]byte, error) {
	return encoder.Marshal((*encodedStateDiff)(d))
}

func (d *StateDiff) UnmarshalBinary(data []byte) error {
	return encoder.Unmarshal(data, (*encodedStateDiff)(d))
}
