package core_test

import (
	"testing"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	_ "github.com/NethermindEth/juno-devnet/encoder/registry"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStateDiff(t *testing.T) *core.StateDiff {
	t.Helper()

	addr := utils.HexToAddress(t, "0x1")
	classHash := utils.HexToClassHash(t, "0xc1a55")
	return &core.StateDiff{
		StorageDiffs: []core.StorageDiff{{
			Address: *addr,
			StorageEntries: []core.StorageEntry{
				{Key: felt.UnsafeFromString[felt.StorageKey]("0x5"), Value: *utils.HexToFelt(t, "0x2a")},
				{Key: felt.UnsafeFromString[felt.StorageKey]("0x6"), Value: felt.Zero},
			},
		}},
		Nonces:            []core.NonceDiff{{Address: *addr, Nonce: felt.FromUint64(2)}},
		DeployedContracts: []core.DeployedContract{{Address: *addr, ClassHash: *classHash}},
		DeclaredClasses: []core.DeclaredClass{
			{ClassHash: *classHash, Class: &core.SierraClass{
				Abi:             "[]",
				Program:         []*felt.Felt{utils.HexToFelt(t, "0x1")},
				SemanticVersion: "0.1.0",
			}},
			{ClassHash: felt.UnsafeFromString[felt.ClassHash]("0xde9"), Class: &core.DeprecatedCairoClass{
				Externals: []core.DeprecatedEntryPoint{
					{Selector: utils.HexToFelt(t, "0x10"), Offset: utils.HexToFelt(t, "0x0")},
				},
				Program: []byte(`{"data":[]}`),
			}},
		},
		CompiledClassHashes: []core.CompiledClassHash{{
			ClassHash:         *classHash,
			CompiledClassHash: felt.UnsafeFromString[felt.CasmClassHash]("0xca5"),
		}},
	}
}

func TestStateDiffLength(t *testing.T) {
	assert.True(t, new(core.StateDiff).IsEmpty())

	diff := sampleStateDiff(t)
	assert.Equal(t, uint64(7), diff.Length())
	assert.False(t, diff.IsEmpty())
}

func TestStateDiffBinary(t *testing.T) {
	diff := sampleStateDiff(t)

	data, err := diff.MarshalBinary()
	require.NoError(t, err)

	var decoded core.StateDiff
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, diff, &decoded)
}
