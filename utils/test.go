package utils

import (
	"testing"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/stretchr/testify/require"
)

func HexTo[T felt.FeltLike](t testing.TB, hex string) *T {
	t.Helper()

	f, err := new(felt.Felt).SetString(hex)
	require.NoError(t, err)
	x := T(*f)
	return &x
}

func HexToFelt(t testing.TB, hex string) *felt.Felt {
	t.Helper()
	return HexTo[felt.Felt](t, hex)
}

func HexToAddress(t testing.TB, hex string) *felt.Address {
	t.Helper()
	return HexTo[felt.Address](t, hex)
}

func HexToClassHash(t testing.TB, hex string) *felt.ClassHash {
	t.Helper()
	return HexTo[felt.ClassHash](t, hex)
}
