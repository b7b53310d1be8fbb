package felt

type FeltLike interface {
	Felt | Address | StorageKey | Hash | ClassHash | CasmClassHash
}

func IsZero[F FeltLike](v F) bool {
	f := Felt(v)
	return f.IsZero()
}

func Equal[F FeltLike](a, b F) bool {
	fa := Felt(a)
	fb := Felt(b)
	return fa.Equal(&fb)
}

// UnsafeFromString parses s into any felt-like type and panics on malformed input.
// Only meant for constants and tests.
func UnsafeFromString[F FeltLike](s string) F {
	return F(*NewUnsafeFromString(s))
}
