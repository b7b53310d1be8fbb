package felt_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJson(t *testing.T) {
	var with felt.Felt
	require.NoError(t, with.UnmarshalJSON([]byte("0x4437ab")))

	var without felt.Felt
	require.NoError(t, without.UnmarshalJSON([]byte("4437ab")))
	assert.True(t, without.Equal(&with))

	var quoted felt.Felt
	require.NoError(t, quoted.UnmarshalJSON([]byte(`"0x4437ab"`)))
	assert.Equal(t, with, quoted)

	t.Run("rejects values outside the field", func(t *testing.T) {
		var f felt.Felt
		tooBig := `"0x800000000000011000000000000000000000000000000000000000000000001"`
		assert.Error(t, f.UnmarshalJSON([]byte(tooBig)))
	})
}

func TestMarshalJson(t *testing.T) {
	f := felt.FromUint64(42)
	out, err := json.Marshal(&f)
	require.NoError(t, err)
	assert.Equal(t, `"0x2a"`, string(out))
}

func TestString(t *testing.T) {
	assert.Equal(t, "0x0", felt.Zero.String())
	assert.Equal(t, "0xabc", felt.NewUnsafeFromString("0xABC").String())
}

func TestFeltCbor(t *testing.T) {
	var val felt.Felt
	_, err := val.SetRandom()
	require.NoError(t, err)

	bytes, err := cbor.Marshal(val)
	require.NoError(t, err)

	var unmarshaledFelt felt.Felt
	require.NoError(t, cbor.Unmarshal(bytes, &unmarshaledFelt))
	assert.Equal(t, val, unmarshaledFelt)
}

func TestUint64(t *testing.T) {
	tests := map[string]struct {
		value    string
		expected uint64
		fits     bool
	}{
		"zero":       {value: "0x0", expected: 0, fits: true},
		"small":      {value: "0x2a", expected: 42, fits: true},
		"max uint64": {value: "0xffffffffffffffff", expected: math.MaxUint64, fits: true},
		"2^64":       {value: "0x10000000000000000", fits: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f := felt.NewUnsafeFromString(test.value)
			v, ok := f.Uint64()
			assert.Equal(t, test.fits, ok)
			assert.Equal(t, test.expected, v)
		})
	}
}

func TestFeltAsMapKey(t *testing.T) {
	m := map[felt.Felt]int{}
	m[*felt.NewUnsafeFromString("0x5")] = 1
	m[felt.FromUint64(5)] = 2

	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[*felt.NewUnsafeFromString("5")])
}

func TestGenericHelpers(t *testing.T) {
	addr := felt.UnsafeFromString[felt.Address]("0x1")
	assert.False(t, felt.IsZero(addr))
	assert.True(t, felt.IsZero(felt.Address{}))
	assert.True(t, felt.Equal(addr, felt.Address(felt.One)))
}
