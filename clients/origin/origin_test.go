package origin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NethermindEth/juno-devnet/clients/origin"
	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/core/state"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

// fakeNode serves the starknet_ namespace from fixed maps
type fakeNode struct {
	head      uint64
	storage   map[felt.Address]map[felt.StorageKey]felt.Felt
	nonces    map[felt.Address]felt.Felt
	deployed  map[felt.Address]felt.ClassHash
	classes   map[felt.ClassHash]*origin.Class
	calls     atomic.Int64
	lastBlock atomic.Pointer[origin.BlockID]
}

func (n *fakeNode) record(id origin.BlockID) {
	n.calls.Add(1)
	n.lastBlock.Store(&id)
}

func (n *fakeNode) BlockNumber() uint64 {
	n.calls.Add(1)
	return n.head
}

func (n *fakeNode) GetStorageAt(addr felt.Address, key felt.StorageKey, id origin.BlockID) (*felt.Felt, error) {
	n.record(id)
	slots, ok := n.storage[addr]
	if !ok {
		return nil, &rpcError{20, "Contract not found"}
	}
	value := slots[key]
	return &value, nil
}

func (n *fakeNode) GetNonce(id origin.BlockID, addr felt.Address) (*felt.Felt, error) {
	n.record(id)
	nonce, ok := n.nonces[addr]
	if !ok {
		return nil, &rpcError{20, "Contract not found"}
	}
	return &nonce, nil
}

func (n *fakeNode) GetClassHashAt(id origin.BlockID, addr felt.Address) (*felt.ClassHash, error) {
	n.record(id)
	if number, ok := id.Number(); ok && number > n.head {
		return nil, &rpcError{24, "Block not found"}
	}
	classHash, ok := n.deployed[addr]
	if !ok {
		return nil, &rpcError{20, "Contract not found"}
	}
	return &classHash, nil
}

func (n *fakeNode) GetClass(id origin.BlockID, classHash felt.ClassHash) (*origin.Class, error) {
	n.record(id)
	class, ok := n.classes[classHash]
	if !ok {
		return nil, &rpcError{28, "Class hash not found"}
	}
	return class, nil
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()

	program, err := utils.Gzip64Encode([]byte(`{"data":["0x1"]}`))
	require.NoError(t, err)

	idx := uint64(0)
	return &fakeNode{
		head: 42,
		storage: map[felt.Address]map[felt.StorageKey]felt.Felt{
			*utils.HexToAddress(t, "0x1"): {
				felt.UnsafeFromString[felt.StorageKey]("0x5"): *utils.HexToFelt(t, "0x2a"),
			},
		},
		nonces: map[felt.Address]felt.Felt{
			*utils.HexToAddress(t, "0x1"): felt.FromUint64(7),
		},
		deployed: map[felt.Address]felt.ClassHash{
			*utils.HexToAddress(t, "0x1"): *utils.HexToClassHash(t, "0xabc"),
		},
		classes: map[felt.ClassHash]*origin.Class{
			*utils.HexToClassHash(t, "0xabc"): {
				SierraProgram:        []*felt.Felt{utils.HexToFelt(t, "0x1"), utils.HexToFelt(t, "0x2")},
				ContractClassVersion: "0.1.0",
				EntryPoints: origin.EntryPoints{
					External: []origin.EntryPoint{{Index: &idx, Selector: utils.HexToFelt(t, "0x10")}},
				},
				Abi: json.RawMessage(`"[]"`),
			},
			*utils.HexToClassHash(t, "0xde9"): {
				Program: program,
				EntryPoints: origin.EntryPoints{
					Constructor: []origin.EntryPoint{{Offset: utils.HexToFelt(t, "0x3"), Selector: utils.HexToFelt(t, "0x20")}},
				},
				Abi: json.RawMessage(`[]`),
			},
		},
	}
}

func newTestClient(t *testing.T, node *fakeNode, blockID origin.BlockID) *origin.Client {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("starknet", node))
	t.Cleanup(server.Stop)

	client := origin.NewClient(rpc.DialInProc(server), blockID)
	t.Cleanup(client.Close)
	return client
}

func TestReads(t *testing.T) {
	node := newFakeNode(t)
	client := newTestClient(t, node, origin.BlockNumber(10))

	addr := utils.HexToAddress(t, "0x1")
	missing := utils.HexToAddress(t, "0x999")
	key := felt.UnsafeFromString[felt.StorageKey]("0x5")

	t.Run("storage", func(t *testing.T) {
		value, err := client.StorageAt(context.Background(), addr, &key)
		require.NoError(t, err)
		assert.Equal(t, *utils.HexToFelt(t, "0x2a"), value)

		other := felt.UnsafeFromString[felt.StorageKey]("0x6")
		value, err = client.StorageAt(context.Background(), addr, &other)
		require.NoError(t, err)
		assert.True(t, value.IsZero())

		_, err = client.StorageAt(context.Background(), missing, &key)
		require.ErrorIs(t, err, origin.ErrNotFound)
		require.ErrorIs(t, err, state.ErrOriginNotFound)
	})

	t.Run("nonce", func(t *testing.T) {
		nonce, err := client.Nonce(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, felt.FromUint64(7), nonce)

		_, err = client.Nonce(context.Background(), missing)
		require.ErrorIs(t, err, origin.ErrNotFound)
	})

	t.Run("class hash at", func(t *testing.T) {
		classHash, err := client.ClassHashAt(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, *utils.HexToClassHash(t, "0xabc"), classHash)

		_, err = client.ClassHashAt(context.Background(), missing)
		require.ErrorIs(t, err, origin.ErrNotFound)
	})

	t.Run("sierra class", func(t *testing.T) {
		class, err := client.Class(context.Background(), utils.HexToClassHash(t, "0xabc"))
		require.NoError(t, err)

		sierra, ok := class.(*core.SierraClass)
		require.True(t, ok)
		assert.Equal(t, "[]", sierra.Abi)
		assert.Equal(t, "0.1.0", sierra.SemanticVersion)
		assert.Len(t, sierra.Program, 2)
		assert.Equal(t, []core.SierraEntryPoint{{Index: 0, Selector: utils.HexToFelt(t, "0x10")}}, sierra.EntryPoints.External)
	})

	t.Run("legacy class", func(t *testing.T) {
		class, err := client.Class(context.Background(), utils.HexToClassHash(t, "0xde9"))
		require.NoError(t, err)

		legacy, ok := class.(*core.DeprecatedCairoClass)
		require.True(t, ok)
		assert.JSONEq(t, `{"data":["0x1"]}`, string(legacy.Program))
		assert.Equal(t, []core.DeprecatedEntryPoint{
			{Selector: utils.HexToFelt(t, "0x20"), Offset: utils.HexToFelt(t, "0x3")},
		}, legacy.Constructors)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := client.Class(context.Background(), utils.HexToClassHash(t, "0xdef"))
		require.ErrorIs(t, err, origin.ErrNotFound)
	})

	t.Run("pinned block is sent", func(t *testing.T) {
		_, err := client.Nonce(context.Background(), addr)
		require.NoError(t, err)
		number, ok := node.lastBlock.Load().Number()
		require.True(t, ok)
		assert.Equal(t, uint64(10), number)
	})
}

func TestBlockNotFound(t *testing.T) {
	node := newFakeNode(t)
	client := newTestClient(t, node, origin.BlockNumber(node.head+1))

	_, err := client.ClassHashAt(context.Background(), utils.HexToAddress(t, "0x1"))
	require.ErrorIs(t, err, origin.ErrBlockNotFound)
	assert.NotErrorIs(t, err, origin.ErrNotFound)
	assert.Equal(t, int64(1), node.calls.Load())
}

func TestPin(t *testing.T) {
	node := newFakeNode(t)

	client := newTestClient(t, node, origin.Latest())
	require.NoError(t, client.Pin(context.Background()))
	number, ok := client.BlockID().Number()
	require.True(t, ok)
	assert.Equal(t, node.head, number)

	hash := origin.BlockHash(utils.HexToFelt(t, "0xb10c"))
	client = newTestClient(t, node, hash)
	require.NoError(t, client.Pin(context.Background()))
	assert.Equal(t, hash, client.BlockID())
}

func TestCache(t *testing.T) {
	node := newFakeNode(t)
	client := newTestClient(t, node, origin.BlockNumber(1)).WithCacheSize(16)

	addr := utils.HexToAddress(t, "0x1")
	key := felt.UnsafeFromString[felt.StorageKey]("0x5")
	classHash := utils.HexToClassHash(t, "0xabc")

	for range 3 {
		value, err := client.StorageAt(context.Background(), addr, &key)
		require.NoError(t, err)
		assert.Equal(t, *utils.HexToFelt(t, "0x2a"), value)

		_, err = client.Class(context.Background(), classHash)
		require.NoError(t, err)

		// not-found answers are not cached
		_, err = client.Nonce(context.Background(), utils.HexToAddress(t, "0x2"))
		require.ErrorIs(t, err, origin.ErrNotFound)
	}
	assert.Equal(t, int64(5), node.calls.Load())
}

func TestEventListener(t *testing.T) {
	node := newFakeNode(t)

	var methods []string
	var errs []error
	client := newTestClient(t, node, origin.BlockNumber(1)).
		WithListener(&origin.SelectiveListener{
			OnResponseCb: func(method string, err error, _ time.Duration) {
				methods = append(methods, method)
				errs = append(errs, err)
			},
		})

	_, err := client.Nonce(context.Background(), utils.HexToAddress(t, "0x1"))
	require.NoError(t, err)
	_, err = client.Nonce(context.Background(), utils.HexToAddress(t, "0x2"))
	require.Error(t, err)

	assert.Equal(t, []string{"starknet_getNonce", "starknet_getNonce"}, methods)
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
}

func TestRetries(t *testing.T) {
	t.Run("transport failures are retried", func(t *testing.T) {
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		client, err := origin.Dial(context.Background(), srv.URL, origin.BlockNumber(1))
		require.NoError(t, err)
		t.Cleanup(client.Close)
		client.WithMaxRetries(3).WithBackoff(time.Millisecond)

		_, err = client.Nonce(context.Background(), utils.HexToAddress(t, "0x1"))
		require.ErrorIs(t, err, origin.ErrUnreachable)
		assert.NotErrorIs(t, err, origin.ErrNotFound)
		assert.Equal(t, int64(4), requests.Load())
	})

	t.Run("recovers before retries run out", func(t *testing.T) {
		node := newFakeNode(t)
		server := rpc.NewServer()
		require.NoError(t, server.RegisterName("starknet", node))
		t.Cleanup(server.Stop)

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			server.ServeHTTP(w, r)
		}))
		t.Cleanup(srv.Close)

		client, err := origin.Dial(context.Background(), srv.URL, origin.BlockNumber(1))
		require.NoError(t, err)
		t.Cleanup(client.Close)
		client.WithBackoff(time.Millisecond)

		nonce, err := client.Nonce(context.Background(), utils.HexToAddress(t, "0x1"))
		require.NoError(t, err)
		assert.Equal(t, felt.FromUint64(7), nonce)
		assert.Equal(t, int64(2), requests.Load())
	})

	t.Run("error responses are final", func(t *testing.T) {
		node := newFakeNode(t)
		client := newTestClient(t, node, origin.BlockNumber(1)).WithMaxRetries(5)

		_, err := client.Nonce(context.Background(), utils.HexToAddress(t, "0x2"))
		require.ErrorIs(t, err, origin.ErrNotFound)
		assert.Equal(t, int64(1), node.calls.Load())
	})
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client, err := origin.Dial(context.Background(), srv.URL, origin.BlockNumber(1))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	client.WithTimeout(50 * time.Millisecond).WithBackoff(time.Millisecond)

	start := time.Now()
	_, err = client.StorageAt(context.Background(), utils.HexToAddress(t, "0x1"), new(felt.StorageKey))
	require.ErrorIs(t, err, origin.ErrUnreachable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStateFallsBackToClient(t *testing.T) {
	node := newFakeNode(t)
	client := newTestClient(t, node, origin.BlockNumber(1))
	s := state.New(state.WithOrigin(client), state.WithContext(context.Background()))

	addr := utils.HexToAddress(t, "0x1")
	require.NoError(t, s.IncrementNonce(addr))
	nonce, err := s.ContractNonce(addr)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(8), nonce)

	// storage of a contract the origin does not know is zero
	key := felt.UnsafeFromString[felt.StorageKey]("0x5")
	value, err := s.ContractStorage(utils.HexToAddress(t, "0x2"), &key)
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	class, err := s.Class(utils.HexToClassHash(t, "0xabc"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), class.Version())

	_, err = s.Class(utils.HexToClassHash(t, "0xdef"))
	require.ErrorIs(t, err, state.ErrUndeclaredClassHash)
}
