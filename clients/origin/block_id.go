package origin

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/NethermindEth/juno-devnet/core/felt"
)

// BlockID selects the block the origin answers from. The zero value is the
// latest block.
type BlockID struct {
	number *uint64
	hash   *felt.Felt
}

func BlockNumber(n uint64) BlockID {
	return BlockID{number: &n}
}

func BlockHash(h *felt.Felt) BlockID {
	return BlockID{hash: h}
}

func Latest() BlockID {
	return BlockID{}
}

func (b BlockID) IsLatest() bool {
	return b.number == nil && b.hash == nil
}

// Number returns the pinned block number, if the id is one
func (b BlockID) Number() (uint64, bool) {
	if b.number == nil {
		return 0, false
	}
	return *b.number, true
}

func (b BlockID) String() string {
	switch {
	case b.number != nil:
		return strconv.FormatUint(*b.number, 10)
	case b.hash != nil:
		return b.hash.String()
	default:
		return "latest"
	}
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	switch {
	case b.number != nil:
		return json.Marshal(map[string]uint64{"block_number": *b.number})
	case b.hash != nil:
		return json.Marshal(map[string]*felt.Felt{"block_hash": b.hash})
	default:
		return []byte(`"latest"`), nil
	}
}

func (b *BlockID) UnmarshalJSON(data []byte) error {
	if string(data) == `"latest"` {
		*b = Latest()
		return nil
	}

	var id struct {
		Number *uint64    `json:"block_number"`
		Hash   *felt.Felt `json:"block_hash"`
	}
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if (id.Number == nil) == (id.Hash == nil) {
		return errors.New("block id must have exactly one of block_number or block_hash")
	}
	*b = BlockID{number: id.Number, hash: id.Hash}
	return nil
}

// ParseBlockID reads the command line form of a block id: "latest", a decimal
// block number or a 0x-prefixed block hash.
func ParseBlockID(s string) (BlockID, error) {
	switch {
	case s == "" || s == "latest":
		return Latest(), nil
	case strings.HasPrefix(s, "0x"):
		h, err := felt.NewFromString(s)
		if err != nil {
			return BlockID{}, err
		}
		return BlockHash(h), nil
	default:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return BlockID{}, err
		}
		return BlockNumber(n), nil
	}
}
