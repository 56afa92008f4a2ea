// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/bumble-foundation/bumble/lib/pipeline"
	"github.com/bumble-foundation/bumble/lib/registry"
	"github.com/bumble-foundation/bumble/lib/value"
	"github.com/bumble-foundation/bumble/lib/wire"
)

// Stage is a pipeline transform. Type alias so consumers import only
// lib/codec, not lib/pipeline directly.
type Stage = pipeline.Stage

// StageSet is the decode-side registry of pipeline stages. Type alias,
// as with Stage.
type StageSet = pipeline.StageSet

// Encode normalizes native Go data into the value model and serializes
// it. reg supplies decompose functions for registered application
// types; it may be nil when v contains none.
func Encode(v any, reg *registry.Registry) ([]byte, error) {
	normalized, err := FromNative(v, reg)
	if err != nil {
		return nil, err
	}
	return wire.Encode(normalized)
}

// Decode deserializes data and denormalizes the result into native Go
// data. Objects with a registered type id are reconstructed by the
// registry's own functions; unregistered ids become inert
// *registry.Placeholder values. Nothing named in the stream is ever
// resolved against code.
func Decode(data []byte, reg *registry.Registry) (any, error) {
	decoded, err := wire.Decode(data)
	if err != nil {
		return nil, err
	}
	return ToNative(decoded, reg)
}

// EncodeValue serializes a value tree without the native bridge.
func EncodeValue(v value.Value) ([]byte, error) {
	return wire.Encode(v)
}

// DecodeValue deserializes into the value model without the native
// bridge. Objects stay as inert *value.Object nodes.
func DecodeValue(data []byte) (value.Value, error) {
	return wire.Decode(data)
}

// Wrap applies the stages' forward transforms around an encoded
// stream and prepends the self-describing envelope header.
func Wrap(data []byte, stages ...Stage) ([]byte, error) {
	return pipeline.Wrap(data, stages...)
}

// Unwrap undoes a wrapped stream, resolving the header's stage ids in
// set. See pipeline.UnwrapPipeline for the explicit-configuration
// variant.
func Unwrap(data []byte, set *StageSet) ([]byte, error) {
	return pipeline.Unwrap(data, set)
}
