// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Base64Stage armors the payload as standard base64, for transport
// over text-only channels.
type Base64Stage struct{}

func (Base64Stage) ID() string { return "base64" }

func (Base64Stage) Forward(payload []byte) ([]byte, []byte, error) {
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(payload)))
	base64.StdEncoding.Encode(encoded, payload)
	return encoded, nil, nil
}

func (Base64Stage) Inverse(params, transformed []byte) ([]byte, error) {
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(transformed)))
	n, err := base64.StdEncoding.Decode(decoded, transformed)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return decoded[:n], nil
}

// HexStage armors the payload as lower-case hexadecimal.
type HexStage struct{}

func (HexStage) ID() string { return "hex" }

func (HexStage) Forward(payload []byte) ([]byte, []byte, error) {
	encoded := make([]byte, hex.EncodedLen(len(payload)))
	hex.Encode(encoded, payload)
	return encoded, nil, nil
}

func (HexStage) Inverse(params, transformed []byte) ([]byte, error) {
	decoded := make([]byte, hex.DecodedLen(len(transformed)))
	n, err := hex.Decode(decoded, transformed)
	if err != nil {
		return nil, fmt.Errorf("hex decode: %w", err)
	}
	return decoded[:n], nil
}

// NullStage passes the payload through unchanged. Useful as an
// explicit no-op in configured pipelines.
type NullStage struct{}

func (NullStage) ID() string { return "null" }

func (NullStage) Forward(payload []byte) ([]byte, []byte, error) {
	return payload, nil, nil
}

func (NullStage) Inverse(params, transformed []byte) ([]byte, error) {
	return transformed, nil
}
