// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package value defines the closed set of data kinds the bumble format
// can represent. Everything the codec touches reduces to this model:
// the encoder walks application data into value trees, the decoder
// produces value trees directly from the byte stream.
//
// Scalar kinds (Null, Bool, Int, Float, Bytes, Text) are plain Go
// types. Container kinds (List, Tuple, Set, Dict, Object) are pointer
// types so the encoder can track the identity of currently-open
// containers and reject cyclic graphs.
//
// Int is arbitrary precision (math/big) — there is no overflow at any
// magnitude. Float is an IEEE-754 double and represents NaN and both
// infinities; NaN is never equal to itself but survives a round trip.
// Bytes and Text are distinct kinds: Bytes carries opaque octets with
// no encoding assumed, Text carries UTF-8 and invalid UTF-8 is
// rejected at the boundary rather than represented.
//
// Set members and Dict keys are restricted to the hashable kinds:
// Bool, Int, Float (excluding NaN), Bytes, Text, and Tuple whose
// members are themselves hashable. [CanonicalKey] produces the unique
// byte string for a hashable value; Set and Dict use it for
// deduplication, and the wire codec emits exactly those bytes, so
// in-memory identity and on-wire representation cannot diverge.
//
// Dict preserves insertion order end to end. Set iteration follows
// insertion order in memory, but its wire encoding is canonical
// (members sorted by their encoded bytes) so equal sets always produce
// identical output.
package value
