// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/zeebo/blake3"
)

// SHA256Stage records the SHA256 digest of the payload as public
// params and passes the payload through unchanged. Unwrapping
// recomputes the digest and fails with an *IntegrityError on any
// mismatch, so corruption anywhere in the wrapped stream is detected
// rather than silently decoded.
type SHA256Stage struct{}

func (SHA256Stage) ID() string { return "sha256" }

func (SHA256Stage) Forward(payload []byte) ([]byte, []byte, error) {
	digest := sha256.Sum256(payload)
	return payload, digest[:], nil
}

func (SHA256Stage) Inverse(params, transformed []byte) ([]byte, error) {
	digest := sha256.Sum256(transformed)
	if subtle.ConstantTimeCompare(digest[:], params) != 1 {
		return nil, &IntegrityError{StageID: "sha256", Want: params, Got: digest[:]}
	}
	return transformed, nil
}

// Blake3Stage is the BLAKE3 counterpart of SHA256Stage: faster on
// large payloads, same 32-byte digest size.
type Blake3Stage struct{}

func (Blake3Stage) ID() string { return "blake3" }

func (Blake3Stage) Forward(payload []byte) ([]byte, []byte, error) {
	digest := blake3.Sum256(payload)
	return payload, digest[:], nil
}

func (Blake3Stage) Inverse(params, transformed []byte) ([]byte, error) {
	digest := blake3.Sum256(transformed)
	if subtle.ConstantTimeCompare(digest[:], params) != 1 {
		return nil, &IntegrityError{StageID: "blake3", Want: params, Got: digest[:]}
	}
	return transformed, nil
}
