package origin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/core/state"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Starknet JSON-RPC error codes the client tells apart
const (
	contractNotFoundCode  = 20
	blockNotFoundCode     = 24
	classHashNotFoundCode = 28
)

const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 200 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
)

var (
	// ErrNotFound is returned when the origin answered that the entry does not exist
	ErrNotFound      = state.ErrOriginNotFound
	ErrBlockNotFound = errors.New("origin block not found")
	// ErrUnreachable wraps transport and protocol failures
	ErrUnreachable = errors.New("origin unreachable")
)

var _ state.Origin = (*Client)(nil)

type cacheKey struct {
	method string
	a, b   felt.Felt
}

// Client reads the state of a remote Starknet network at a single block over
// JSON-RPC. Responses for a pinned block never change, so a Client and its cache
// can be shared by any number of states.
type Client struct {
	rpc        *rpc.Client
	blockID    BlockID
	maxRetries uint64
	backoff    time.Duration
	timeout    time.Duration
	cache      *lru.Cache[cacheKey, any]
	log        utils.SimpleLogger
	listener   EventListener
}

func (c *Client) WithMaxRetries(num uint64) *Client {
	c.maxRetries = num
	return c
}

func (c *Client) WithBackoff(d time.Duration) *Client {
	c.backoff = d
	return c
}

// WithTimeout bounds each call, retries included
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// WithCacheSize keeps up to size successful responses in memory. A size of zero
// disables the cache.
func (c *Client) WithCacheSize(size int) *Client {
	if size <= 0 {
		c.cache = nil
		return c
	}
	cache, err := lru.New[cacheKey, any](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	c.cache = cache
	return c
}

func (c *Client) WithLogger(log utils.SimpleLogger) *Client {
	c.log = log
	return c
}

func (c *Client) WithListener(l EventListener) *Client {
	c.listener = l
	return c
}

// NewClient creates a client that uses the given RPC client.
func NewClient(rpcClient *rpc.Client, blockID BlockID) *Client {
	return &Client{
		rpc:        rpcClient,
		blockID:    blockID,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		timeout:    DefaultTimeout,
		log:        utils.NewNopZapLogger(),
		listener:   &SelectiveListener{},
	}
}

// Dial connects a client to the given URL.
func Dial(ctx context.Context, rawURL string, blockID BlockID) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrUnreachable, rawURL, err)
	}
	return NewClient(rpcClient, blockID), nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) BlockID() BlockID {
	return c.blockID
}

// Pin resolves a latest block id to the current block number, so that every
// later answer comes from the same block. Other ids are left untouched.
func (c *Client) Pin(ctx context.Context) error {
	if !c.blockID.IsLatest() {
		return nil
	}
	number, err := c.BlockNumber(ctx)
	if err != nil {
		return err
	}
	c.log.Infow("Pinned fork block", "number", number)
	c.blockID = BlockNumber(number)
	return nil
}

// BlockNumber returns the most recent block number of the origin network
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return call[uint64](ctx, c, nil, "starknet_blockNumber")
}

func (c *Client) StorageAt(ctx context.Context, addr *felt.Address, key *felt.StorageKey) (felt.Felt, error) {
	k := &cacheKey{method: "starknet_getStorageAt", a: felt.Felt(*addr), b: felt.Felt(*key)}
	return call[felt.Felt](ctx, c, k, k.method, addr, key, c.blockID)
}

func (c *Client) Nonce(ctx context.Context, addr *felt.Address) (felt.Felt, error) {
	k := &cacheKey{method: "starknet_getNonce", a: felt.Felt(*addr)}
	return call[felt.Felt](ctx, c, k, k.method, c.blockID, addr)
}

func (c *Client) ClassHashAt(ctx context.Context, addr *felt.Address) (felt.ClassHash, error) {
	k := &cacheKey{method: "starknet_getClassHashAt", a: felt.Felt(*addr)}
	return call[felt.ClassHash](ctx, c, k, k.method, c.blockID, addr)
}

func (c *Client) Class(ctx context.Context, classHash *felt.ClassHash) (core.Class, error) {
	k := cacheKey{method: "starknet_getClass", a: felt.Felt(*classHash)}
	if class, ok := cached[core.Class](c, &k); ok {
		return class, nil
	}

	wire, err := call[Class](ctx, c, nil, k.method, c.blockID, classHash)
	if err != nil {
		return nil, err
	}
	class, err := adaptClass(&wire)
	if err != nil {
		return nil, fmt.Errorf("%w: class %s: %w", ErrUnreachable, classHash, err)
	}
	if c.cache != nil {
		c.cache.Add(k, class)
	}
	return class, nil
}

func cached[T any](c *Client, key *cacheKey) (T, bool) {
	var zero T
	if c.cache == nil || key == nil {
		return zero, false
	}
	v, ok := c.cache.Get(*key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// call performs one JSON-RPC request with bounded retries. Only transport
// failures are retried; an error response from the origin is final. A non-nil
// key caches the successful result.
func call[T any](ctx context.Context, c *Client, key *cacheKey, method string, args ...any) (T, error) {
	if v, ok := cached[T](c, key); ok {
		return v, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.backoff), c.maxRetries), ctx)
	result, err := backoff.RetryWithData(func() (T, error) {
		var result T
		start := time.Now()
		err := c.rpc.CallContext(ctx, &result, method, args...)
		c.listener.OnResponse(method, err, time.Since(start))
		if err == nil {
			return result, nil
		}

		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return result, backoff.Permanent(mapRPCError(method, rpcErr))
		}
		c.log.Debugw("Origin request failed, retrying...", "method", method, "err", err)
		return result, err
	}, policy)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBlockNotFound) || errors.Is(err, ErrUnreachable) {
			return result, err
		}
		return result, fmt.Errorf("%w: %s: %w", ErrUnreachable, method, err)
	}

	if key != nil && c.cache != nil {
		c.cache.Add(*key, result)
	}
	return result, nil
}

func mapRPCError(method string, err rpc.Error) error {
	switch err.ErrorCode() {
	case contractNotFoundCode, classHashNotFoundCode:
		return fmt.Errorf("%w: %s: %s", ErrNotFound, method, err.Error())
	case blockNotFoundCode:
		return fmt.Errorf("%w: %s: %s", ErrBlockNotFound, method, err.Error())
	default:
		return fmt.Errorf("%w: %s: code %d: %s", ErrUnreachable, method, err.ErrorCode(), err.Error())
	}
}
