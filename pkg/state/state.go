// Package state persists page view-state records through a pluggable
// key-value store. Persistence is best-effort by policy: a page must keep
// working with its in-memory state when the store is unavailable, so Encode
// never fails observably and Decode always produces a well-formed record.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/runboard/viewstate/internal/hydrate"
)

// DecodeContext identifies the payload being decoded inside a hook.
type DecodeContext = hydrate.Context

// PreHook normalises a stored payload before it is merged over defaults. It
// is the migration point for renamed fields.
type PreHook = hydrate.PreHook

// PostHook adjusts or validates a decoded record.
type PostHook[T any] = hydrate.PostHook[T]

// ErrKindRequired indicates a Ref without a page kind.
var ErrKindRequired = errors.New("state: kind is required")

// Store is the durable key-value port. Load reports ok=false when no payload
// exists for key. Implementations own durability; the codec owns the policy
// of what a payload means.
type Store interface {
	Load(ctx context.Context, key string) (payload string, ok bool, err error)
	Save(ctx context.Context, key string, payload string) error
}

// Ref identifies one persisted record: the page kind plus the context the
// page was opened for (e.g. an experiment ID). ContextKey may be empty for
// singleton pages.
type Ref struct {
	Kind       string
	ContextKey string
}

// Identifier returns the stable storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Kind == "" {
		return "", ErrKindRequired
	}
	if r.ContextKey == "" {
		return r.Kind, nil
	}
	return fmt.Sprintf("%s/%s", r.Kind, r.ContextKey), nil
}

// LogEvent describes a swallowed persistence failure.
type LogEvent struct {
	Op   string // "encode" or "decode"
	Key  string
	Kind string
	Err  error
}

// Logger receives swallowed persistence failures. Encode and Decode never
// surface errors to callers; this is the only place they are visible.
type Logger interface {
	LogStorage(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogStorage implements Logger.
func (f LoggerFunc) LogStorage(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogStorage(LogEvent) {}
