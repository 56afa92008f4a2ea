// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package diag renders encoded bumble streams as CBOR diagnostic
// notation (RFC 8949 §8) for humans: tooling and tests get a readable
// dump without inventing another text syntax. The rendering is
// lossy by design — it is a view, not a round-trippable encoding.
// Tuples and sets render as arrays, and objects as a two-entry map of
// their type id and fields; dict insertion order is preserved.
package diag

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/bumble-foundation/bumble/lib/value"
	"github.com/bumble-foundation/bumble/lib/wire"
)

// encMode is the CBOR encoder for scalar leaves, configured with Core
// Deterministic Encoding (RFC 8949 §4.2) so the same value always
// renders the same way.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("diag: CBOR encoder initialization failed: " + err.Error())
	}
}

// Diagnose decodes a bumble stream and returns its diagnostic
// notation.
func Diagnose(data []byte) (string, error) {
	decoded, err := wire.Decode(data)
	if err != nil {
		return "", err
	}
	return DiagnoseValue(decoded)
}

// DiagnoseValue returns the diagnostic notation for a value tree.
func DiagnoseValue(v value.Value) (string, error) {
	encoded, err := appendCBOR(nil, v)
	if err != nil {
		return "", err
	}
	notation, err := cbor.Diagnose(encoded)
	if err != nil {
		return "", fmt.Errorf("rendering diagnostic notation: %w", err)
	}
	return notation, nil
}

// appendCBOR appends the CBOR encoding of a value tree to dst.
// Containers are assembled by hand so dict entry order survives — a
// Go map would randomize it.
func appendCBOR(dst []byte, v value.Value) ([]byte, error) {
	switch concrete := v.(type) {
	case value.Null:
		return appendScalar(dst, nil)
	case value.Bool:
		return appendScalar(dst, bool(concrete))
	case *value.Int:
		if small, fits := concrete.Int64(); fits {
			return appendScalar(dst, small)
		}
		return appendScalar(dst, concrete.Big())
	case value.Float:
		return appendScalar(dst, float64(concrete))
	case value.Bytes:
		return appendScalar(dst, []byte(concrete))
	case value.Text:
		return appendScalar(dst, string(concrete))

	case *value.List:
		dst = appendContainerHead(dst, 4, concrete.Len())
		var err error
		for i := 0; i < concrete.Len(); i++ {
			dst, err = appendCBOR(dst, concrete.At(i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case *value.Tuple:
		dst = appendContainerHead(dst, 4, concrete.Len())
		var err error
		for i := 0; i < concrete.Len(); i++ {
			dst, err = appendCBOR(dst, concrete.At(i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case *value.Set:
		dst = appendContainerHead(dst, 4, concrete.Len())
		var err error
		for _, element := range concrete.Elems() {
			dst, err = appendCBOR(dst, element)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case *value.Dict:
		dst = appendContainerHead(dst, 5, concrete.Len())
		var err error
		for _, entry := range concrete.Entries() {
			dst, err = appendCBOR(dst, entry.Key)
			if err != nil {
				return nil, err
			}
			dst, err = appendCBOR(dst, entry.Value)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case *value.Object:
		dst = appendContainerHead(dst, 5, 2)
		var err error
		if dst, err = appendScalar(dst, "type"); err != nil {
			return nil, err
		}
		if dst, err = appendScalar(dst, concrete.TypeID()); err != nil {
			return nil, err
		}
		if dst, err = appendScalar(dst, "fields"); err != nil {
			return nil, err
		}
		return appendCBOR(dst, concrete.Fields())

	default:
		return nil, fmt.Errorf("cannot render foreign value kind %s", v.Kind())
	}
}

func appendScalar(dst []byte, v any) ([]byte, error) {
	encoded, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T leaf: %w", v, err)
	}
	return append(dst, encoded...), nil
}

// appendContainerHead appends a CBOR definite-length head for the
// given major type (4 = array, 5 = map) and element count.
func appendContainerHead(dst []byte, majorType byte, length int) []byte {
	head := majorType << 5
	switch {
	case length < 24:
		return append(dst, head|byte(length))
	case length < 1<<8:
		return append(dst, head|24, byte(length))
	case length < 1<<16:
		return append(dst, head|25, byte(length>>8), byte(length))
	default:
		return append(dst, head|26, byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
	}
}
