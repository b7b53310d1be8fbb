package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/utils"
)

// DefaultOriginTimeout bounds a single origin lookup, retries included.
const DefaultOriginTimeout = 10 * time.Second

var _ Writer = (*State)(nil)

// State is the layered devnet state: writes land in an in-memory overlay, and
// reads the overlay cannot answer fall through to an optional Origin.
//
// A State is meant to be used by one execution flow at a time; the caller holds
// the lock. Every read that reaches the origin blocks the caller for at most the
// origin timeout, and a State never has more than one origin call in flight.
type State struct {
	// pending holds writes since the last Commit and shadows committed.
	pending   *Overlay
	committed *Overlay
	visited   *visitedPCs

	origin        Origin
	originTimeout time.Duration
	ctx           context.Context

	log      utils.SimpleLogger
	listener EventListener
}

type Option func(*State)

// WithOrigin makes the state fall back to o on overlay misses. Without it the
// state is closed and fully local.
func WithOrigin(o Origin) Option {
	return func(s *State) {
		s.origin = o
	}
}

func WithOriginTimeout(d time.Duration) Option {
	return func(s *State) {
		s.originTimeout = d
	}
}

// WithContext sets the context origin calls derive from. Cancelling it aborts
// in-flight origin lookups, which then resolve like an unreachable origin.
func WithContext(ctx context.Context) Option {
	return func(s *State) {
		s.ctx = ctx
	}
}

func WithLogger(log utils.SimpleLogger) Option {
	return func(s *State) {
		s.log = log
	}
}

func WithListener(l EventListener) Option {
	return func(s *State) {
		s.listener = l
	}
}

func New(opts ...Option) *State {
	s := &State{
		pending:       NewOverlay(),
		committed:     NewOverlay(),
		visited:       newVisitedPCs(),
		originTimeout: DefaultOriginTimeout,
		ctx:           context.Background(),
		log:           utils.NewNopZapLogger(),
		listener:      &SelectiveListener{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forked reports whether reads may fall through to an origin
func (s *State) Forked() bool {
	return s.origin != nil
}

// lookup resolves one read: pending overlay, then committed overlay, then origin.
// The returned error is the origin's and is only set together with AbsentAtOrigin
// or OriginUnreachable.
func lookup[T any](
	s *State,
	kind Kind,
	local func(*Overlay) (T, bool),
	remote func(context.Context, Origin) (T, error),
) (T, Resolution, error) {
	if v, ok := local(s.pending); ok {
		return v, ResolvedLocal, nil
	}
	if v, ok := local(s.committed); ok {
		return v, ResolvedLocal, nil
	}

	var zero T
	if s.origin == nil {
		return zero, AbsentLocal, nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.originTimeout)
	defer cancel()

	start := time.Now()
	v, err := remote(ctx, s.origin)
	s.listener.OnOriginCall(kind, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrOriginNotFound) {
			return zero, AbsentAtOrigin, err
		}
		s.log.Warnw("Origin lookup failed, falling back to default", "kind", kind, "err", err)
		return zero, OriginUnreachable, err
	}
	return v, ResolvedOrigin, nil
}

func (s *State) ContractStorage(addr *felt.Address, key *felt.StorageKey) (felt.Felt, error) {
	value, resolution, _ := lookup(s, KindStorage,
		func(o *Overlay) (felt.Felt, bool) { return o.Storage(addr, key) },
		func(ctx context.Context, origin Origin) (felt.Felt, error) { return origin.StorageAt(ctx, addr, key) },
	)
	s.listener.OnRead(KindStorage, resolution)
	return value, nil
}

func (s *State) ContractNonce(addr *felt.Address) (felt.Felt, error) {
	nonce, resolution, _ := lookup(s, KindNonce,
		func(o *Overlay) (felt.Felt, bool) { return o.Nonce(addr) },
		func(ctx context.Context, origin Origin) (felt.Felt, error) { return origin.Nonce(ctx, addr) },
	)
	s.listener.OnRead(KindNonce, resolution)
	return nonce, nil
}

// ContractClassHash returns the class deployed at addr, or the zero class hash
// when nothing is deployed there.
func (s *State) ContractClassHash(addr *felt.Address) (felt.ClassHash, error) {
	classHash, resolution, _ := lookup(s, KindClassHash,
		func(o *Overlay) (felt.ClassHash, bool) { return o.ClassHash(addr) },
		func(ctx context.Context, origin Origin) (felt.ClassHash, error) { return origin.ClassHashAt(ctx, addr) },
	)
	s.listener.OnRead(KindClassHash, resolution)
	return classHash, nil
}

// Class returns the class declared under classHash. Unlike the other reads, a
// miss is an error: an unknown class cannot be treated as an empty one.
func (s *State) Class(classHash *felt.ClassHash) (core.Class, error) {
	class, resolution, err := lookup(s, KindClass,
		func(o *Overlay) (core.Class, bool) { return o.Class(classHash) },
		func(ctx context.Context, origin Origin) (core.Class, error) { return origin.Class(ctx, classHash) },
	)
	s.listener.OnRead(KindClass, resolution)

	switch resolution {
	case ResolvedLocal, ResolvedOrigin:
		return class, nil
	case AbsentLocal:
		return nil, fmt.Errorf("%w: %s", ErrUndeclaredClassHash, classHash)
	default:
		return nil, fmt.Errorf("%w: %s: %v", ErrUndeclaredClassHash, classHash, err)
	}
}

// CompiledClassHash is answered from the overlay only: the origin's RPC has no
// query for it.
func (s *State) CompiledClassHash(classHash *felt.ClassHash) (felt.CasmClassHash, error) {
	resolution := ResolvedLocal
	defer func() { s.listener.OnRead(KindCompiledClassHash, resolution) }()

	if casmHash, ok := s.pending.CompiledClassHash(classHash); ok {
		return casmHash, nil
	}
	if casmHash, ok := s.committed.CompiledClassHash(classHash); ok {
		return casmHash, nil
	}
	resolution = AbsentLocal
	return felt.CasmClassHash{}, fmt.Errorf("%w: no compiled class hash for %s", ErrUndeclaredClassHash, classHash)
}

func (s *State) SetStorage(addr *felt.Address, key *felt.StorageKey, value *felt.Felt) error {
	s.pending.PutStorage(addr, key, value)
	return nil
}

// IncrementNonce bumps the nonce of addr by one. The current nonce is resolved
// like any other read, so a forked account continues from its origin nonce.
// Nonces are bounded to uint64; a nonce outside that range is left untouched.
func (s *State) IncrementNonce(addr *felt.Address) error {
	current, err := s.ContractNonce(addr)
	if err != nil {
		return fmt.Errorf("get contract nonce: %w", err)
	}

	v, ok := current.Uint64()
	if !ok || v == math.MaxUint64 {
		return fmt.Errorf("%w: %s has nonce %s", ErrOutOfRangeNonce, addr, &current)
	}

	next := felt.FromUint64(v + 1)
	s.pending.PutNonce(addr, &next)
	return nil
}

// SetClassHash deploys classHash at addr. The zero address is reserved.
func (s *State) SetClassHash(addr *felt.Address, classHash *felt.ClassHash) error {
	if addr.IsZero() {
		return ErrOutOfRangeContractAddress
	}
	s.pending.PutClassHash(addr, classHash)
	return nil
}

func (s *State) SetContractClass(classHash *felt.ClassHash, class core.Class) error {
	if class == nil {
		return fmt.Errorf("declare %s: %w", classHash, ErrNilClass)
	}
	s.pending.PutClass(classHash, class)
	return nil
}

func (s *State) SetCompiledClassHash(classHash *felt.ClassHash, casmHash *felt.CasmClassHash) error {
	s.pending.PutCompiledClassHash(classHash, casmHash)
	return nil
}

// StateDiff lists the changes written since the last Commit. Values read from the
// origin are never part of it.
func (s *State) StateDiff() *core.StateDiff {
	return s.pending.StateDiff()
}

// Commit returns the changes since the previous Commit and starts a new checkpoint.
// Committed values stay readable.
func (s *State) Commit() *core.StateDiff {
	diff := s.pending.StateDiff()
	s.committed.Merge(s.pending)
	s.pending = NewOverlay()
	return diff
}

// Discard drops the writes since the last Commit
func (s *State) Discard() {
	s.pending = NewOverlay()
}

// Dump lists every change written since New or the last Reset, committed or not
func (s *State) Dump() *core.StateDiff {
	all := s.committed.Clone()
	all.Merge(s.pending)
	return all.StateDiff()
}

// Apply replays diff through the write invariants. Nothing is written unless
// every entry is valid.
func (s *State) Apply(diff *core.StateDiff) error {
	for _, n := range diff.Nonces {
		if _, ok := n.Nonce.Uint64(); !ok {
			return fmt.Errorf("%w: %s has nonce %s", ErrOutOfRangeNonce, &n.Address, &n.Nonce)
		}
	}
	for _, c := range diff.DeployedContracts {
		if c.Address.IsZero() {
			return ErrOutOfRangeContractAddress
		}
	}
	for _, c := range diff.DeclaredClasses {
		if c.Class == nil {
			return fmt.Errorf("declare %s: %w", &c.ClassHash, ErrNilClass)
		}
	}

	for _, sd := range diff.StorageDiffs {
		for _, entry := range sd.StorageEntries {
			s.pending.PutStorage(&sd.Address, &entry.Key, &entry.Value)
		}
	}
	for _, n := range diff.Nonces {
		s.pending.PutNonce(&n.Address, &n.Nonce)
	}
	for _, c := range diff.DeployedContracts {
		s.pending.PutClassHash(&c.Address, &c.ClassHash)
	}
	for _, c := range diff.DeclaredClasses {
		s.pending.PutClass(&c.ClassHash, c.Class)
	}
	for _, c := range diff.CompiledClassHashes {
		s.pending.PutCompiledClassHash(&c.ClassHash, &c.CompiledClassHash)
	}
	return nil
}

// Reset drops every local write and visited program counter. The origin, if
// any, is kept.
func (s *State) Reset() {
	s.pending = NewOverlay()
	s.committed = NewOverlay()
	s.visited = newVisitedPCs()
}

// Copy returns an independent state for simulation. The overlays are copied and
// the origin is shared.
func (s *State) Copy() *State {
	return &State{
		pending:       s.pending.Clone(),
		committed:     s.committed.Clone(),
		visited:       s.visited.clone(),
		origin:        s.origin,
		originTimeout: s.originTimeout,
		ctx:           s.ctx,
		log:           s.log,
		listener:      s.listener,
	}
}

func (s *State) AddVisitedPCs(classHash *felt.ClassHash, pcs []uint64) {
	s.visited.add(classHash, pcs)
}

// VisitedPCs returns the program counters recorded for classHash in ascending order
func (s *State) VisitedPCs(classHash *felt.ClassHash) []uint64 {
	return s.visited.get(classHash)
}
