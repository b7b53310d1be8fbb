package validator_test

import (
	"testing"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/NethermindEth/juno-devnet/validator"
	"github.com/stretchr/testify/assert"
)

func TestRPCURL(t *testing.T) {
	type config struct {
		URL string `validate:"omitempty,rpc_url"`
	}

	tests := map[string]bool{
		"":                           true,
		"http://localhost:6060":      true,
		"https://rpc.example.com/v1": true,
		"ws://127.0.0.1:9545":        true,
		"ftp://example.com":          false,
		"localhost:6060":             false,
		"http://":                    false,
	}
	for raw, valid := range tests {
		err := validator.Validator().Struct(config{URL: raw})
		if valid {
			assert.NoError(t, err, raw)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func TestBlockID(t *testing.T) {
	type config struct {
		Block string `validate:"block_id"`
	}

	for _, valid := range []string{"", "latest", "12", "0xabc"} {
		assert.NoError(t, validator.Validator().Struct(config{Block: valid}), valid)
	}
	for _, invalid := range []string{"pending", "-1", "0xzz"} {
		assert.Error(t, validator.Validator().Struct(config{Block: invalid}), invalid)
	}
}

func TestCustomTypes(t *testing.T) {
	type config struct {
		Felt  felt.Felt      `validate:"required"`
		Level utils.LogLevel `validate:"oneof=debug info warn error"`
	}

	assert.NoError(t, validator.Validator().Struct(config{Felt: felt.One, Level: utils.WARN}))
	assert.Error(t, validator.Validator().Struct(config{Felt: felt.One, Level: utils.LogLevel(42)}))
}
