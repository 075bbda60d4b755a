package relay

import (
	"errors"
	"fmt"
)

// Kind classifies a relay failure.
type Kind int

const (
	// KindUnreachable covers connection refused, DNS failure and timeouts.
	KindUnreachable Kind = iota + 1
	// KindRejected means the relay answered with a non-2xx status.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against an *Error.
var (
	ErrUnreachable = errors.New("relay unreachable")
	ErrRejected    = errors.New("relay rejected request")
)

// Error is returned by TriggerOpen for every failed attempt.
type Error struct {
	Kind       Kind
	Host       string
	StatusCode int   // set for KindRejected
	Err        error // underlying transport error for KindUnreachable
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRejected:
		return fmt.Sprintf("relay at %s rejected request: status %d", e.Host, e.StatusCode)
	case KindUnreachable:
		return fmt.Sprintf("relay at %s unreachable: %v", e.Host, e.Err)
	default:
		return fmt.Sprintf("relay at %s failed: %v", e.Host, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Kind == KindUnreachable
	case ErrRejected:
		return e.Kind == KindRejected
	}
	return false
}
