// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. zstd.Encoder and zstd.Decoder are
// safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("pipeline: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("pipeline: zstd decoder initialization failed: " + err.Error())
	}
}

// ZstdStage compresses with zstd at the default level — good ratios
// for text-like payloads (~3-5x) at reasonable CPU cost. Params carry
// the uncompressed size so the inverse direction can verify the
// result length exactly.
type ZstdStage struct{}

func (ZstdStage) ID() string { return "zstd" }

func (ZstdStage) Forward(payload []byte) ([]byte, []byte, error) {
	compressed := zstdEncoder.EncodeAll(payload, nil)
	return compressed, []byte(strconv.Itoa(len(payload))), nil
}

func (ZstdStage) Inverse(params, transformed []byte) ([]byte, error) {
	uncompressedSize, err := parseSizeParams("zstd", params)
	if err != nil {
		return nil, err
	}

	// The params come from the untrusted header, so they must not
	// size an allocation; the decoder grows the buffer from the frame
	// itself and the length is verified after the fact.
	result, err := zstdDecoder.DecodeAll(transformed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}

// LZ4Stage compresses with block-mode LZ4 — a fast default for binary
// payloads (~1.5-2x ratio, very fast decode). Incompressible input is
// stored raw: the inverse direction distinguishes the two cases by
// length, since a kept LZ4 block is always strictly smaller than the
// original while raw storage is exactly the original size.
type LZ4Stage struct{}

// maxLZ4ExpansionRatio bounds how much larger a decompressed LZ4 block
// can be than its compressed form. The block format tops out at 255
// literal bytes per token byte.
const maxLZ4ExpansionRatio = 255

func (LZ4Stage) ID() string { return "lz4" }

func (LZ4Stage) Forward(payload []byte) ([]byte, []byte, error) {
	params := []byte(strconv.Itoa(len(payload)))

	bound := lz4.CompressBlockBound(len(payload))
	destination := make([]byte, bound)
	written, err := lz4.CompressBlock(payload, destination, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible; output at or above the input size is likewise
	// not worth keeping.
	if written == 0 || written >= len(payload) {
		return payload, params, nil
	}
	return destination[:written], params, nil
}

func (LZ4Stage) Inverse(params, transformed []byte) ([]byte, error) {
	uncompressedSize, err := parseSizeParams("lz4", params)
	if err != nil {
		return nil, err
	}

	// Raw storage: Forward only keeps a compressed block when it is
	// strictly smaller than the input.
	if len(transformed) == uncompressedSize {
		return transformed, nil
	}

	// An LZ4 block cannot expand beyond maxLZ4ExpansionRatio, so a
	// larger claimed size cannot be genuine. The params come from the
	// untrusted header and must not demand an arbitrary allocation.
	if uncompressedSize > maxLZ4ExpansionRatio*len(transformed) {
		return nil, fmt.Errorf("lz4: claimed uncompressed size %d implausible for %d compressed bytes", uncompressedSize, len(transformed))
	}

	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(transformed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

// parseSizeParams parses the decimal uncompressed-size params shared
// by the compression stages.
func parseSizeParams(stageID string, params []byte) (int, error) {
	size, err := strconv.Atoi(string(params))
	if err != nil || size < 0 {
		return 0, fmt.Errorf("%s: invalid uncompressed-size params %q", stageID, params)
	}
	return size, nil
}
