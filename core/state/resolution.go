package state

import (
	"time"
)

// Kind identifies which of the five state mappings a read targeted.
type Kind uint8

const (
	KindStorage Kind = iota
	KindNonce
	KindClassHash
	KindClass
	KindCompiledClassHash
)

func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindNonce:
		return "nonce"
	case KindClassHash:
		return "class_hash"
	case KindClass:
		return "class"
	case KindCompiledClassHash:
		return "compiled_class_hash"
	default:
		return "unknown"
	}
}

// Resolution records where a read was answered from. Callers of Reader never see
// it; it exists so that "never written" and "origin unreachable" can be told
// apart in logs and metrics even though both resolve to the same default.
type Resolution uint8

const (
	// ResolvedLocal means the overlay had the entry.
	ResolvedLocal Resolution = iota
	// AbsentLocal means the overlay missed and no origin is configured.
	AbsentLocal
	// ResolvedOrigin means the origin returned the value.
	ResolvedOrigin
	// AbsentAtOrigin means the origin answered that it has no such entry.
	AbsentAtOrigin
	// OriginUnreachable means the origin call failed or timed out.
	OriginUnreachable
)

func (r Resolution) String() string {
	switch r {
	case ResolvedLocal:
		return "local"
	case AbsentLocal:
		return "absent_local"
	case ResolvedOrigin:
		return "origin"
	case AbsentAtOrigin:
		return "absent_origin"
	case OriginUnreachable:
		return "origin_unreachable"
	default:
		return "unknown"
	}
}

type EventListener interface {
	OnRead(kind Kind, resolution Resolution)
	OnOriginCall(kind Kind, took time.Duration)
}

type SelectiveListener struct {
	OnReadCb       func(kind Kind, resolution Resolution)
	OnOriginCallCb func(kind Kind, took time.Duration)
}

func (l *SelectiveListener) OnRead(kind Kind, resolution Resolution) {
	if l.OnReadCb != nil {
		l.OnReadCb(kind, resolution)
	}
}

func (l *SelectiveListener) OnOriginCall(kind Kind, took time.Duration) {
	if l.OnOriginCallCb != nil {
		l.OnOriginCallCb(kind, took)
	}
}
