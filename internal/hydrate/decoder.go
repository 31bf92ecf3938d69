// Package hydrate converts possibly-partial, possibly-legacy stored payloads
// into typed state records by merging them over the record's defaults. It is
// deliberately versionless: drift in either direction is absorbed by decoding
// onto current defaults instead of validating structure.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context carries identifiers tied to a stored payload.
type Context struct {
	Kind       string
	Identifier string
}

// PreHook lets callers normalise the payload before decoding. This is the
// migration point for renamed fields: move the old key's value under the new
// name here.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated record after decoding.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder merges stored payloads over typed default records.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode merges payload over base and returns the result. Fields present in
// payload and known to T override base; missing fields keep base's value;
// unknown fields are dropped by encoding/json. The returned record is always
// usable: on a partial decode failure (a field of the wrong type) the error
// describes the first offending field while every other field has been
// applied, so callers that swallow the error still get defaults-for-bad-fields
// behaviour.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any, base T) (T, error) {
	if payload == nil {
		return base, fmt.Errorf("hydrate: payload is nil for %s %q", ctx.Kind, ctx.Identifier)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return base, fmt.Errorf("hydrate: clone payload for %s %q: %w", ctx.Kind, ctx.Identifier, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return base, fmt.Errorf("hydrate: pre-hook for %s %q failed: %w", ctx.Kind, ctx.Identifier, err)
		}
		if next != nil {
			current = next
		}
	}

	result := base
	buffer, err := json.Marshal(current)
	if err != nil {
		return base, fmt.Errorf("hydrate: marshal payload for %s %q: %w", ctx.Kind, ctx.Identifier, err)
	}
	if err := json.NewDecoder(bytes.NewReader(buffer)).Decode(&result); err != nil {
		return result, fmt.Errorf("hydrate: decode %s %q: %w", ctx.Kind, ctx.Identifier, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return result, fmt.Errorf("hydrate: post-hook for %s %q failed: %w", ctx.Kind, ctx.Identifier, err)
		}
	}

	return result, nil
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
