// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline wraps an encoded byte stream in an ordered chain of
// reversible transforms: compression, integrity hashing, encryption,
// armoring. The envelope is self-describing — the header records each
// stage's identifier and the public parameters needed to invert it —
// so a decoder can undo the chain without out-of-band configuration.
// Deployments that do not trust stream-embedded stage lists can
// instead supply the expected chain explicitly with [UnwrapPipeline].
//
// Envelope layout, reusing the wire grammar's token forms:
//
//	i<count>e (u<len>:<stage id> <len>:<params>)* <payload>
//
// Wrapping applies each stage's Forward in sequence order; unwrapping
// applies Inverse in reverse order. Secret material never appears in
// the header: encryption stages receive key material through their
// constructors, out of band. An integrity stage records its digest as
// public params and [Unwrap] fails with an [IntegrityError] when the
// recomputed digest differs; a header stage id with no registered
// stage fails with an [UnregisteredStageError].
//
// Shipped stages: zstd and lz4 compression, sha256 and blake3
// integrity, xchacha20poly1305 symmetric AEAD, age public-key
// encryption, base64 and hex armoring, and a null passthrough.
package pipeline
