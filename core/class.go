package core

import (
	"encoding/json"

	"github.com/NethermindEth/juno-devnet/core/felt"
)

// Class unambiguously defines a Contract's semantics. It is the executable
// representation handed to the execution engine.
type Class interface {
	Version() uint64
}

var (
	_ Class = (*DeprecatedCairoClass)(nil)
	_ Class = (*SierraClass)(nil)
)

// DeprecatedCairoClass is a legacy (Cairo 0) class.
type DeprecatedCairoClass struct {
	Abi json.RawMessage
	// External functions defined in the class.
	Externals []DeprecatedEntryPoint
	// Functions that receive L1 messages. See
	// https://www.cairo-lang.org/docs/hello_starknet/l1l2.html#receiving-a-message-from-l1
	L1Handlers []DeprecatedEntryPoint
	// Constructors for the class. Currently, only one is allowed.
	Constructors []DeprecatedEntryPoint
	// Program is the decompressed program JSON.
	Program json.RawMessage
}

type DeprecatedEntryPoint struct {
	// A unique identifier of the entry point (function) in the program.
	Selector *felt.Felt
	// The offset of the instruction in the class's bytecode.
	Offset *felt.Felt
}

func (c *DeprecatedCairoClass) Version() uint64 {
	return 0
}

// SierraClass is a class compiled from Cairo 1 or later.
type SierraClass struct {
	Abi         string
	EntryPoints struct {
		Constructor []SierraEntryPoint
		External    []SierraEntryPoint
		L1Handler   []SierraEntryPoint
	}
	Program         []*felt.Felt
	SemanticVersion string
}

type SierraEntryPoint struct {
	// The index of this EntryPoint
	Index uint64
	// A unique identifier of the entry point (function) in the program.
	Selector *felt.Felt
}

func (c *SierraClass) Version() uint64 {
	return 1
}
