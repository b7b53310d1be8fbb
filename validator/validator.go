package validator

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Custom validation function for fork endpoints, which go-ethereum's rpc can dial
func validateRPCURL(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return true
	default:
		return false
	}
}

// Custom validation function for block ids accepted on the command line
func validateBlockID(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch {
	case s == "" || s == "latest":
		return true
	case strings.HasPrefix(s, "0x"):
		_, err := new(felt.Felt).SetString(s)
		return err == nil
	default:
		_, err := strconv.ParseUint(s, 10, 64)
		return err == nil
	}
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("rpc_url", validateRPCURL); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		if err := v.RegisterValidation("block_id", validateBlockID); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case felt.Felt:
				return f.String()
			case *felt.Felt:
				return f.String()
			}
			panic("not a felt")
		}, felt.Felt{}, &felt.Felt{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if l, ok := field.Interface().(utils.LogLevel); ok {
				if l < utils.DEBUG || l > utils.ERROR {
					return ""
				}
				return l.String()
			}
			panic("not a utils.LogLevel")
		}, utils.LogLevel(0))
	})
	return v
}
