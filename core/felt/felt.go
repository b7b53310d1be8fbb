package felt

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/fxamacker/cbor/v2"
)

// Bytes is the size of a felt's big-endian encoding
const Bytes = fp.Bytes

// Felt is an element of the Stark field. The zero value is the additive identity
// and the type is comparable, so it can be used as a map key directly.
type Felt struct {
	val fp.Element
}

// zero felt constant
var Zero = Felt{}

// One is the multiplicative identity
var One = FromUint64(1)

var bigIntPool = sync.Pool{
	New: func() any {
		return new(big.Int)
	},
}

// FromUint64 returns the felt representation of v
func FromUint64(v uint64) Felt {
	var f Felt
	f.val.SetUint64(v)
	return f
}

// NewFromString parses a decimal or 0x-prefixed hex string
func NewFromString(s string) (*Felt, error) {
	return new(Felt).SetString(s)
}

// NewUnsafeFromString is NewFromString for literals known to be valid. It panics otherwise.
func NewUnsafeFromString(s string) *Felt {
	f, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// UnmarshalJSON accepts numbers and strings as input.
// See Element.SetString for valid prefixes (0x, 0b, ...).
// If there is an error, we try to explicitly unmarshal from hex before
// returning an error. This implementation is taken from [gnark-crypto].
//
// [gnark-crypto]: https://github.com/ConsenSys/gnark-crypto/blob/9fd0a7de2044f088a29cfac373da73d868230148/ecc/stark-curve/fp/element.go#L1028-L1056
func (z *Felt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > fp.Bits*3 {
		return errors.New("value too large (max = Element.Bits * 3)")
	}

	// we accept numbers and strings, remove leading and trailing quotes if any
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}

	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)

	if _, ok := vv.SetString(s, 0); !ok {
		if _, ok := vv.SetString(s, 16); !ok {
			return errors.New("can't parse into a big.Int: " + s)
		}
	}
	if vv.Sign() < 0 || vv.Cmp(fp.Modulus()) >= 0 {
		return fmt.Errorf("%s is not a valid field element", s)
	}

	z.val.SetBigInt(vv)
	return nil
}

// MarshalJSON encodes the felt as a quoted 0x-prefixed hex string
func (z *Felt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + z.String() + `"`), nil
}

// MarshalCBOR encodes the felt as its 32 byte big-endian representation
func (z Felt) MarshalCBOR() ([]byte, error) {
	b := z.val.Bytes()
	return cbor.Marshal(b[:])
}

// UnmarshalCBOR decodes a felt encoded with MarshalCBOR
func (z *Felt) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	return z.SetBytesCanonical(b)
}

// SetBytesCanonical sets z from a big-endian byte slice and fails if the value
// is not smaller than the field modulus
func (z *Felt) SetBytesCanonical(data []byte) error {
	if len(data) > Bytes {
		return fmt.Errorf("expected at most %d bytes, got %d", Bytes, len(data))
	}
	var buf [Bytes]byte
	copy(buf[Bytes-len(data):], data)
	return z.val.SetBytesCanonical(buf[:])
}

// SetString forwards the call to underlying field element implementation
func (z *Felt) SetString(number string) (*Felt, error) {
	_, err := z.val.SetString(number)
	return z, err
}

// SetRandom forwards the call to underlying field element implementation
func (z *Felt) SetRandom() (*Felt, error) {
	_, err := z.val.SetRandom()
	return z, err
}

// String returns the 0x-prefixed lower case hex representation
func (z *Felt) String() string {
	return "0x" + z.val.Text(16)
}

// Equal forwards the call to underlying field element implementation
func (z *Felt) Equal(x *Felt) bool {
	return z.val.Equal(&x.val)
}

// IsZero forwards the call to underlying field element implementation
func (z *Felt) IsZero() bool {
	return z.val.IsZero()
}

// Uint64 returns the value of z as a uint64. ok is false when z does not fit
// into 64 bits.
func (z *Felt) Uint64() (v uint64, ok bool) {
	if !z.val.IsUint64() {
		return 0, false
	}
	return z.val.Uint64(), true
}
