package encoder

import (
	"io"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	ts = cbor.NewTagSet()
	// https://www.iana.org/assignments/cbor-tags/cbor-tags.xhtml
	// 65536-15309735 	Unassigned
	tagNum  uint64 = 65536
	encMode cbor.EncMode
	decMode cbor.DecMode
	modesMu sync.RWMutex
)

var initialiseEncoder sync.Once

func initEncAndDecModes() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncModeWithTags(ts)
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements: 10485760, // Set to a reasonably high value, 10MiB
	}.DecModeWithTags(ts)
	if err != nil {
		panic(err)
	}
}

// RegisterType assigns the next free tag to rType so values of that type can be
// stored behind interface fields.
func RegisterType(rType reflect.Type) error {
	modesMu.Lock()
	defer modesMu.Unlock()

	if err := ts.Add(
		cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
		rType,
		tagNum,
	); err != nil {
		return err
	}
	initEncAndDecModes()
	tagNum++
	return nil
}

func modes() (cbor.EncMode, cbor.DecMode) {
	initialiseEncoder.Do(initEncAndDecModes)
	modesMu.RLock()
	defer modesMu.RUnlock()
	return encMode, decMode
}

// Marshal returns encoding of param v
func Marshal(v any) ([]byte, error) {
	enc, _ := modes()
	return enc.Marshal(v)
}

// Unmarshal decodes param v from []byte b
func Unmarshal(b []byte, v any) error {
	_, dec := modes()
	return dec.Unmarshal(b, v)
}

type Encoder interface {
	Encode(v any) error
}

// NewEncoder returns a new encoder that writes to w
func NewEncoder(w io.Writer) Encoder {
	enc, _ := modes()
	return enc.NewEncoder(w)
}

type Decoder interface {
	Decode(v any) error
}

// NewDecoder returns a new decoder that reads from r
func NewDecoder(r io.Reader) Decoder {
	_, dec := modes()
	return dec.NewDecoder(r)
}
