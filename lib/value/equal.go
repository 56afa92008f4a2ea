// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"math"
)

// Equal reports structural equality between two values. Values of
// different kinds are never equal (an Int is never equal to a Float,
// even at the same magnitude — the kinds are distinct on the wire).
//
// Float equality follows the format's injectivity rather than raw
// IEEE comparison: NaN is never equal to anything including itself,
// and +0 and -0 are distinct (they encode to different bytes). All
// other floats compare by bit pattern, which for non-NaN values
// matches numeric equality.
//
// Set equality ignores insertion order. Dict equality compares the
// key→value mapping: insertion order is observable state that the
// codec preserves, but two dicts with the same entries in different
// orders are still equal values.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch left := a.(type) {
	case Null:
		return true

	case Bool:
		return left == b.(Bool)

	case *Int:
		return left.cmp(b.(*Int)) == 0

	case Float:
		x, y := float64(left), float64(b.(Float))
		if math.IsNaN(x) || math.IsNaN(y) {
			return false
		}
		return math.Float64bits(x) == math.Float64bits(y)

	case Bytes:
		return bytes.Equal(left, b.(Bytes))

	case Text:
		return left == b.(Text)

	case *List:
		right := b.(*List)
		if left.Len() != right.Len() {
			return false
		}
		for i := 0; i < left.Len(); i++ {
			if !Equal(left.At(i), right.At(i)) {
				return false
			}
		}
		return true

	case *Tuple:
		right := b.(*Tuple)
		if left.Len() != right.Len() {
			return false
		}
		for i := 0; i < left.Len(); i++ {
			if !Equal(left.At(i), right.At(i)) {
				return false
			}
		}
		return true

	case *Set:
		right := b.(*Set)
		if left.Len() != right.Len() {
			return false
		}
		for _, element := range left.Elems() {
			if !right.Contains(element) {
				return false
			}
		}
		return true

	case *Dict:
		right := b.(*Dict)
		if left.Len() != right.Len() {
			return false
		}
		for _, entry := range left.Entries() {
			otherValue, present := right.Get(entry.Key)
			if !present || !Equal(entry.Value, otherValue) {
				return false
			}
		}
		return true

	case *Object:
		right := b.(*Object)
		return left.TypeID() == right.TypeID() && Equal(left.Fields(), right.Fields())

	default:
		return false
	}
}
