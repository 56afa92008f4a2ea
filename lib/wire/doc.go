// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the bumble byte grammar: a total,
// deterministic, self-delimiting mapping between the value model and
// bytes. Every token is self-terminating, so decoding is a single
// left-to-right scan with no backtracking and no external length
// information — each marker byte selects the next token's shape,
// making the grammar a prefix code over token kinds.
//
// Token forms:
//
//	n             null
//	T  F          booleans
//	i-42e         integer (ASCII decimal, no leading zero, no -0)
//	f1.5e         float (shortest round-trip decimal, 'E' exponent,
//	              or the literals nan, inf, -inf)
//	5:hello       bytes  (decimal length, colon, raw octets)
//	u5:hello      text   (decimal UTF-8 byte length, colon, octets)
//	l...e         list
//	t...e         tuple
//	s...e         set   (members sorted by their own encoded bytes)
//	d...e         dict  (key/value pairs in insertion order)
//	ou3:food...ee object (text type id, then a field dict)
//
// Encoding fails on cyclic value graphs ([CyclicValueError]) — the
// encoder tracks the set of currently-open containers and rejects a
// container that is its own ancestor. Set members are emitted in
// ascending order of their serialized bytes, so equal sets always
// produce byte-identical output regardless of insertion order.
//
// Decoding fails with a [StructuralError] carrying the byte offset on
// truncated input, a length prefix past the end of input, an unknown
// marker, a non-canonical integer, float, or length, invalid UTF-8 inside a
// text token, a duplicate set member or dict key, an unterminated
// container, or trailing bytes after the outermost value. Decoding
// never executes code derived from the stream: object tokens decode to
// inert *value.Object nodes.
package wire
