package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runboard/viewstate/internal/hydrate"
)

// CodecOption configures a Codec instance.
type CodecOption[T any] func(*Codec[T])

// WithLogger attaches a logger for swallowed persistence failures.
func WithLogger[T any](logger Logger) CodecOption[T] {
	return func(c *Codec[T]) {
		if logger == nil {
			c.logger = noopLogger{}
			return
		}
		c.logger = logger
	}
}

// WithPreHook registers a payload-normalisation hook applied before decoding.
// This is where renamed fields are migrated from old payloads.
func WithPreHook[T any](hook PreHook) CodecOption[T] {
	return func(c *Codec[T]) {
		c.decoderOpts = append(c.decoderOpts, hydrate.WithPreHook[T](hook))
	}
}

// WithPostHook registers a record hook applied after decoding.
func WithPostHook[T any](hook PostHook[T]) CodecOption[T] {
	return func(c *Codec[T]) {
		c.decoderOpts = append(c.decoderOpts, hydrate.WithPostHook[T](hook))
	}
}

// Codec reads and writes one page kind's state records through a Store.
// Decode is total: whatever bytes this codec (or any earlier schema revision
// of it) has ever written, the result is a valid record with defaults filling
// every field the payload could not supply.
type Codec[T any] struct {
	store       Store
	defaults    func() T
	logger      Logger
	decoder     *hydrate.Decoder[T]
	decoderOpts []hydrate.DecoderOption[T]
}

// NewCodec constructs a codec over store. defaults must return a fresh record
// on every call; the codec hands it out and merges payloads onto it.
func NewCodec[T any](store Store, defaults func() T, opts ...CodecOption[T]) *Codec[T] {
	c := &Codec[T]{
		store:    store,
		defaults: defaults,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.decoder = hydrate.NewDecoder(c.decoderOpts...)
	return c
}

// Encode serialises state and writes it under ref's key, overwriting any
// prior value. Failures (marshal, quota, store outage) are swallowed and
// reported only through the logger: the in-memory state stays authoritative
// for the session and the page flow must not be interrupted.
func (c *Codec[T]) Encode(ctx context.Context, ref Ref, state T) {
	key, err := ref.Identifier()
	if err != nil {
		c.logger.LogStorage(LogEvent{Op: "encode", Kind: ref.Kind, Err: err})
		return
	}
	payload, err := json.Marshal(state)
	if err != nil {
		c.logger.LogStorage(LogEvent{Op: "encode", Key: key, Kind: ref.Kind, Err: fmt.Errorf("state: marshal: %w", err)})
		return
	}
	if err := c.store.Save(ctx, key, string(payload)); err != nil {
		c.logger.LogStorage(LogEvent{Op: "encode", Key: key, Kind: ref.Kind, Err: fmt.Errorf("state: save: %w", err)})
	}
}

// Decode reads the record stored under ref's key. An absent, unreadable, or
// unparseable payload yields the schema defaults unchanged. A parseable
// payload is merged over the defaults: known fields override, missing fields
// keep their defaults, unknown fields are dropped, and a field stored with
// the wrong type degrades to its default. Decode never returns an error.
func (c *Codec[T]) Decode(ctx context.Context, ref Ref) T {
	record := c.defaults()
	key, err := ref.Identifier()
	if err != nil {
		c.logger.LogStorage(LogEvent{Op: "decode", Kind: ref.Kind, Err: err})
		return record
	}
	payload, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.LogStorage(LogEvent{Op: "decode", Key: key, Kind: ref.Kind, Err: fmt.Errorf("state: load: %w", err)})
		return record
	}
	if !ok {
		return record
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		c.logger.LogStorage(LogEvent{Op: "decode", Key: key, Kind: ref.Kind, Err: fmt.Errorf("state: unmarshal: %w", err)})
		return record
	}

	merged, err := c.decoder.Decode(hydrate.Context{Kind: ref.Kind, Identifier: key}, parsed, record)
	if err != nil {
		// Partial merges are kept: fields the payload could not supply are
		// already at their defaults.
		c.logger.LogStorage(LogEvent{Op: "decode", Key: key, Kind: ref.Kind, Err: err})
	}
	return merged
}
