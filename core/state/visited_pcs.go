package state

import (
	"maps"
	"slices"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/bits-and-blooms/bitset"
)

// maxDensePC is the first program counter kept outside the bitset. Above it a
// bitset would allocate memory proportional to the counter value.
const maxDensePC = 1 << 20

// classPCs holds the visited program counters of one class. Counters below
// maxDensePC live in the bitset, the rest in far.
type classPCs struct {
	dense *bitset.BitSet
	far   map[uint64]struct{}
}

// visitedPCs records which program counters of each class were executed.
type visitedPCs struct {
	byClass map[felt.ClassHash]*classPCs
}

func newVisitedPCs() *visitedPCs {
	return &visitedPCs{byClass: make(map[felt.ClassHash]*classPCs)}
}

func (v *visitedPCs) add(classHash *felt.ClassHash, pcs []uint64) {
	if len(pcs) == 0 {
		return
	}
	set, ok := v.byClass[*classHash]
	if !ok {
		set = &classPCs{dense: bitset.New(0)}
		v.byClass[*classHash] = set
	}
	for _, pc := range pcs {
		if pc < maxDensePC {
			set.dense.Set(uint(pc))
			continue
		}
		if set.far == nil {
			set.far = make(map[uint64]struct{})
		}
		set.far[pc] = struct{}{}
	}
}

// get returns the visited program counters in ascending order
func (v *visitedPCs) get(classHash *felt.ClassHash) []uint64 {
	set, ok := v.byClass[*classHash]
	if !ok {
		return nil
	}
	pcs := make([]uint64, 0, set.dense.Count()+uint(len(set.far)))
	for i, ok := set.dense.NextSet(0); ok; i, ok = set.dense.NextSet(i + 1) {
		pcs = append(pcs, uint64(i))
	}
	return append(pcs, slices.Sorted(maps.Keys(set.far))...)
}

func (v *visitedPCs) clone() *visitedPCs {
	clone := newVisitedPCs()
	for classHash, set := range v.byClass {
		clone.byClass[classHash] = &classPCs{
			dense: set.dense.Clone(),
			far:   maps.Clone(set.far),
		}
	}
	return clone
}
