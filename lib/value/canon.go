// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// UnhashableKeyError reports an attempt to use a value of a
// non-hashable kind (or a Float NaN) as a set member or dict key.
// Callers can use errors.As to extract the offending kind:
//
//	var unhashable *value.UnhashableKeyError
//	if errors.As(err, &unhashable) { ... }
type UnhashableKeyError struct {
	// ValueKind is the kind of the rejected value.
	ValueKind Kind
}

func (e *UnhashableKeyError) Error() string {
	return fmt.Sprintf("value of kind %s is not hashable and cannot be a set member or dict key", e.ValueKind)
}

// Hashable reports whether v may be used as a set member or dict key:
// Bool, Int, Float excluding NaN, Bytes, Text, and Tuple whose members
// are themselves hashable.
func Hashable(v Value) bool {
	switch concrete := v.(type) {
	case Bool, *Int, Bytes, Text:
		return true
	case Float:
		return !math.IsNaN(float64(concrete))
	case *Tuple:
		for i := 0; i < concrete.Len(); i++ {
			if !Hashable(concrete.At(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CanonicalKey returns the unique byte string identifying a hashable
// value: its wire-grammar encoding. Two hashable values are equal
// exactly when their canonical keys are equal, and the wire codec
// emits these same bytes, so deduplication in memory and canonical
// set ordering on the wire agree by construction.
func CanonicalKey(v Value) (string, error) {
	encoded, err := AppendCanonical(nil, v)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// AppendCanonical appends the canonical wire-grammar encoding of a
// hashable value to dst. Non-hashable kinds and Float NaN return an
// UnhashableKeyError; Text with invalid UTF-8 is rejected.
func AppendCanonical(dst []byte, v Value) ([]byte, error) {
	switch concrete := v.(type) {
	case Bool:
		if concrete {
			return append(dst, 'T'), nil
		}
		return append(dst, 'F'), nil

	case *Int:
		dst = append(dst, 'i')
		dst = append(dst, concrete.String()...)
		return append(dst, 'e'), nil

	case Float:
		f := float64(concrete)
		if math.IsNaN(f) {
			return nil, &UnhashableKeyError{ValueKind: KindFloat}
		}
		dst = append(dst, 'f')
		dst = append(dst, FormatFloat(f)...)
		return append(dst, 'e'), nil

	case Bytes:
		dst = strconv.AppendInt(dst, int64(len(concrete)), 10)
		dst = append(dst, ':')
		return append(dst, concrete...), nil

	case Text:
		if !utf8.ValidString(string(concrete)) {
			return nil, fmt.Errorf("text value contains invalid UTF-8")
		}
		dst = append(dst, 'u')
		dst = strconv.AppendInt(dst, int64(len(concrete)), 10)
		dst = append(dst, ':')
		return append(dst, concrete...), nil

	case *Tuple:
		dst = append(dst, 't')
		var err error
		for i := 0; i < concrete.Len(); i++ {
			dst, err = AppendCanonical(dst, concrete.At(i))
			if err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil

	default:
		return nil, &UnhashableKeyError{ValueKind: v.Kind()}
	}
}

// FormatFloat returns the wire text for a finite or infinite double:
// the literal tokens "inf" and "-inf" for the infinities, otherwise
// the shortest decimal digit sequence that parses back to the exact
// same bits. The exponent marker is an uppercase 'E' so the token text
// can never contain the terminator byte 'e'. NaN is the caller's
// responsibility (it encodes as "nan" on the wire but is excluded from
// canonical keys).
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'G', -1, 64)
	}
}
