// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"math"
	"sort"

	"github.com/bumble-foundation/bumble/lib/value"
)

// Encode serializes a value tree to bytes. Encoding is deterministic:
// the same value always produces the same bytes, including for sets,
// whose members are emitted in ascending order of their own encoding.
//
// Returns a *CyclicValueError if the value graph contains a cycle and
// a *value.UnhashableKeyError if a set member or dict key of a
// non-hashable kind reaches the encoder (possible only for values
// constructed outside the value package's checked constructors).
func Encode(v value.Value) ([]byte, error) {
	encoder := &encoder{open: make(map[any]struct{})}
	return encoder.append(nil, v)
}

// encoder tracks the set of currently-open containers during the walk.
// A container is open from the moment its marker byte is emitted until
// its terminator is emitted; reaching an open container again means
// the graph is cyclic.
type encoder struct {
	open map[any]struct{}
}

func (e *encoder) enter(container any, kind value.Kind) error {
	if _, isOpen := e.open[container]; isOpen {
		return &CyclicValueError{ContainerKind: kind}
	}
	e.open[container] = struct{}{}
	return nil
}

func (e *encoder) leave(container any) {
	delete(e.open, container)
}

func (e *encoder) append(dst []byte, v value.Value) ([]byte, error) {
	switch concrete := v.(type) {
	case value.Null:
		return append(dst, 'n'), nil

	case value.Bool, *value.Int, value.Bytes, value.Text:
		// Scalar forms are shared with canonical-key computation so
		// the wire bytes and in-memory identity cannot diverge.
		return value.AppendCanonical(dst, v)

	case value.Float:
		if math.IsNaN(float64(concrete)) {
			return append(dst, 'f', 'n', 'a', 'n', 'e'), nil
		}
		return value.AppendCanonical(dst, v)

	case *value.List:
		if err := e.enter(concrete, value.KindList); err != nil {
			return nil, err
		}
		defer e.leave(concrete)

		dst = append(dst, 'l')
		var err error
		for i := 0; i < concrete.Len(); i++ {
			dst, err = e.append(dst, concrete.At(i))
			if err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil

	case *value.Tuple:
		if err := e.enter(concrete, value.KindTuple); err != nil {
			return nil, err
		}
		defer e.leave(concrete)

		dst = append(dst, 't')
		var err error
		for i := 0; i < concrete.Len(); i++ {
			dst, err = e.append(dst, concrete.At(i))
			if err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil

	case *value.Set:
		// Set members are hashable by construction, which also means
		// they cannot contain mutable containers — cycles through a
		// set are impossible. Canonical form: sort the member
		// encodings bytewise.
		encodings := make([]string, 0, concrete.Len())
		for _, member := range concrete.Elems() {
			encoded, err := value.AppendCanonical(nil, member)
			if err != nil {
				return nil, err
			}
			encodings = append(encodings, string(encoded))
		}
		sort.Strings(encodings)

		dst = append(dst, 's')
		for _, encoded := range encodings {
			dst = append(dst, encoded...)
		}
		return append(dst, 'e'), nil

	case *value.Dict:
		if err := e.enter(concrete, value.KindDict); err != nil {
			return nil, err
		}
		defer e.leave(concrete)

		dst = append(dst, 'd')
		var err error
		for _, entry := range concrete.Entries() {
			dst, err = value.AppendCanonical(dst, entry.Key)
			if err != nil {
				return nil, err
			}
			dst, err = e.append(dst, entry.Value)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, 'e'), nil

	case *value.Object:
		if err := e.enter(concrete, value.KindObject); err != nil {
			return nil, err
		}
		defer e.leave(concrete)

		dst = append(dst, 'o')
		dst, err := value.AppendCanonical(dst, value.Text(concrete.TypeID()))
		if err != nil {
			return nil, err
		}
		dst, err = e.append(dst, concrete.Fields())
		if err != nil {
			return nil, err
		}
		return append(dst, 'e'), nil

	default:
		// The value model is closed; this is reachable only for a
		// foreign type claiming to implement value.Value.
		return nil, fmt.Errorf("cannot encode foreign value kind %s", v.Kind())
	}
}
