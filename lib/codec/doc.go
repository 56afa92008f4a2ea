// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single-import surface of the bumble format: it
// bridges native Go data to the value model, runs the wire codec, and
// re-exports the pipeline envelope, so most consumers import only
// lib/codec.
//
// Encoding accepts plain Go data — nil, booleans, every integer kind,
// *big.Int, floats, strings, []byte, []any, map[string]any — plus the
// kinds Go has no native analogue for ([Tuple], [*Set], [*Dict]), any
// value.Value, and application types registered in a
// registry.Registry:
//
//	reg := registry.New()
//	data, err := codec.Encode(map[string]any{"a": []any{1, true, nil}}, reg)
//	decoded, err := codec.Decode(data, reg)
//
// map[string]any keys are sorted before encoding so the output is
// deterministic; use [*Dict] when insertion order matters, since the
// format preserves dict order end to end.
//
// Decoding inverts the bridge: integers come back as int64 when they
// fit and *big.Int otherwise, tuples as [Tuple], sets as [*Set], dicts
// as [*Dict], and objects as whatever the registry's reconstruct
// function returns — or a *registry.Placeholder when the type id is
// unregistered, never a dynamically resolved constructor.
//
// [EncodeValue] and [DecodeValue] skip the native bridge for callers
// working in the value model directly, and [Wrap]/[Unwrap] apply the
// pipeline envelope around either form.
package codec
