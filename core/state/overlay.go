package state

import (
	"iter"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/utils"
)

// StorageLocation is one storage slot of one contract.
type StorageLocation struct {
	Address felt.Address
	Key     felt.StorageKey
}

// Overlay holds state written locally, as five independent mappings. Every mapping
// enumerates in first-insertion order. Lookups and upserts never fail.
type Overlay struct {
	storage             *utils.OrderedSet[StorageLocation, felt.Felt]
	nonces              *utils.OrderedSet[felt.Address, felt.Felt]
	classHashes         *utils.OrderedSet[felt.Address, felt.ClassHash]
	classes             *utils.OrderedSet[felt.ClassHash, core.Class]
	compiledClassHashes *utils.OrderedSet[felt.ClassHash, felt.CasmClassHash]
}

func NewOverlay() *Overlay {
	return &Overlay{
		storage:             utils.NewOrderedSet[StorageLocation, felt.Felt](),
		nonces:              utils.NewOrderedSet[felt.Address, felt.Felt](),
		classHashes:         utils.NewOrderedSet[felt.Address, felt.ClassHash](),
		classes:             utils.NewOrderedSet[felt.ClassHash, core.Class](),
		compiledClassHashes: utils.NewOrderedSet[felt.ClassHash, felt.CasmClassHash](),
	}
}

func (o *Overlay) Storage(addr *felt.Address, key *felt.StorageKey) (felt.Felt, bool) {
	return o.storage.Get(StorageLocation{Address: *addr, Key: *key})
}

func (o *Overlay) PutStorage(addr *felt.Address, key *felt.StorageKey, value *felt.Felt) {
	o.storage.Put(StorageLocation{Address: *addr, Key: *key}, *value)
}

func (o *Overlay) Nonce(addr *felt.Address) (felt.Felt, bool) {
	return o.nonces.Get(*addr)
}

func (o *Overlay) PutNonce(addr *felt.Address, nonce *felt.Felt) {
	o.nonces.Put(*addr, *nonce)
}

func (o *Overlay) ClassHash(addr *felt.Address) (felt.ClassHash, bool) {
	return o.classHashes.Get(*addr)
}

func (o *Overlay) PutClassHash(addr *felt.Address, classHash *felt.ClassHash) {
	o.classHashes.Put(*addr, *classHash)
}

func (o *Overlay) Class(classHash *felt.ClassHash) (core.Class, bool) {
	return o.classes.Get(*classHash)
}

func (o *Overlay) PutClass(classHash *felt.ClassHash, class core.Class) {
	o.classes.Put(*classHash, class)
}

func (o *Overlay) CompiledClassHash(classHash *felt.ClassHash) (felt.CasmClassHash, bool) {
	return o.compiledClassHashes.Get(*classHash)
}

func (o *Overlay) PutCompiledClassHash(classHash *felt.ClassHash, casmHash *felt.CasmClassHash) {
	o.compiledClassHashes.Put(*classHash, *casmHash)
}

func (o *Overlay) StorageEntries() iter.Seq2[StorageLocation, felt.Felt] {
	return o.storage.All()
}

func (o *Overlay) Nonces() iter.Seq2[felt.Address, felt.Felt] {
	return o.nonces.All()
}

func (o *Overlay) ClassHashes() iter.Seq2[felt.Address, felt.ClassHash] {
	return o.classHashes.All()
}

func (o *Overlay) Classes() iter.Seq2[felt.ClassHash, core.Class] {
	return o.classes.All()
}

func (o *Overlay) CompiledClassHashes() iter.Seq2[felt.ClassHash, felt.CasmClassHash] {
	return o.compiledClassHashes.All()
}

// Len is the total number of entries across all five mappings
func (o *Overlay) Len() int {
	return o.storage.Size() + o.nonces.Size() + o.classHashes.Size() +
		o.classes.Size() + o.compiledClassHashes.Size()
}

// Clone returns an independent overlay. Classes are immutable once declared and
// are shared with the clone.
func (o *Overlay) Clone() *Overlay {
	return &Overlay{
		storage:             o.storage.Clone(),
		nonces:              o.nonces.Clone(),
		classHashes:         o.classHashes.Clone(),
		classes:             o.classes.Clone(),
		compiledClassHashes: o.compiledClassHashes.Clone(),
	}
}

// Merge writes every entry of other on top of o, preserving other's order for
// keys o has not seen yet.
func (o *Overlay) Merge(other *Overlay) {
	for loc, value := range other.StorageEntries() {
		o.storage.Put(loc, value)
	}
	for addr, nonce := range other.Nonces() {
		o.nonces.Put(addr, nonce)
	}
	for addr, classHash := range other.ClassHashes() {
		o.classHashes.Put(addr, classHash)
	}
	for classHash, class := range other.Classes() {
		o.classes.Put(classHash, class)
	}
	for classHash, casmHash := range other.CompiledClassHashes() {
		o.compiledClassHashes.Put(classHash, casmHash)
	}
}

// StateDiff enumerates the overlay. Storage entries are grouped per contract,
// contracts ordered by their first write.
func (o *Overlay) StateDiff() *core.StateDiff {
	diff := new(core.StateDiff)

	storagePos := make(map[felt.Address]int)
	for loc, value := range o.StorageEntries() {
		pos, ok := storagePos[loc.Address]
		if !ok {
			pos = len(diff.StorageDiffs)
			storagePos[loc.Address] = pos
			diff.StorageDiffs = append(diff.StorageDiffs, core.StorageDiff{Address: loc.Address})
		}
		diff.StorageDiffs[pos].StorageEntries = append(diff.StorageDiffs[pos].StorageEntries, core.StorageEntry{
			Key:   loc.Key,
			Value: value,
		})
	}
	for addr, nonce := range o.Nonces() {
		diff.Nonces = append(diff.Nonces, core.NonceDiff{Address: addr, Nonce: nonce})
	}
	for addr, classHash := range o.ClassHashes() {
		diff.DeployedContracts = append(diff.DeployedContracts, core.DeployedContract{
			Address:   addr,
			ClassHash: classHash,
		})
	}
	for classHash, class := range o.Classes() {
		diff.DeclaredClasses = append(diff.DeclaredClasses, core.DeclaredClass{ClassHash: classHash, Class: class})
	}
	for classHash, casmHash := range o.CompiledClassHashes() {
		diff.CompiledClassHashes = append(diff.CompiledClassHashes, core.CompiledClassHash{
			ClassHash:         classHash,
			CompiledClassHash: casmHash,
		})
	}
	return diff
}
