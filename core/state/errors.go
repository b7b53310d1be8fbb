package state

import (
	"errors"
)

var (
	ErrUndeclaredClassHash       = errors.New("class hash is not declared")
	ErrOutOfRangeContractAddress = errors.New("contract address is out of range")
	ErrOutOfRangeNonce           = errors.New("nonce does not fit into a 64 bit counter")
	ErrNilClass                  = errors.New("class is nil")

	// ErrOriginNotFound is wrapped by Origin implementations when the remote node
	// answered but does not know the requested entry. Any other Origin error is
	// treated as the origin being unreachable.
	ErrOriginNotFound = errors.New("not found at origin")
)
