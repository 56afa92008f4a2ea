// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/bumble-foundation/bumble/lib/registry"
	"github.com/bumble-foundation/bumble/lib/value"
)

// maxUint64AsInt64 guards the uint/uint64 narrowing below.
const maxUint64AsInt64 = uint64(1)<<63 - 1

// FromNative normalizes native Go data into the value model. reg may
// be nil when v contains no registered application types. A
// *registry.Placeholder normalizes back into the object it was decoded
// from, so unrecognized objects survive a decode/re-encode round trip
// unchanged.
func FromNative(v any, reg *registry.Registry) (value.Value, error) {
	switch concrete := v.(type) {
	case nil:
		return value.Null{}, nil
	case value.Value:
		return concrete, nil

	case bool:
		return value.Bool(concrete), nil

	case int:
		return value.NewInt(int64(concrete)), nil
	case int8:
		return value.NewInt(int64(concrete)), nil
	case int16:
		return value.NewInt(int64(concrete)), nil
	case int32:
		return value.NewInt(int64(concrete)), nil
	case int64:
		return value.NewInt(concrete), nil
	case uint8:
		return value.NewInt(int64(concrete)), nil
	case uint16:
		return value.NewInt(int64(concrete)), nil
	case uint32:
		return value.NewInt(int64(concrete)), nil
	case uint:
		if uint64(concrete) > maxUint64AsInt64 {
			return value.NewIntFromBig(new(big.Int).SetUint64(uint64(concrete))), nil
		}
		return value.NewInt(int64(concrete)), nil
	case uint64:
		if concrete > maxUint64AsInt64 {
			return value.NewIntFromBig(new(big.Int).SetUint64(concrete)), nil
		}
		return value.NewInt(int64(concrete)), nil
	case *big.Int:
		return value.NewIntFromBig(concrete), nil

	case float32:
		return value.Float(float64(concrete)), nil
	case float64:
		return value.Float(concrete), nil

	case []byte:
		return value.Bytes(concrete), nil
	case string:
		return value.Text(concrete), nil

	case []any:
		elems := make([]value.Value, len(concrete))
		for i, element := range concrete {
			normalized, err := FromNative(element, reg)
			if err != nil {
				return nil, err
			}
			elems[i] = normalized
		}
		return value.NewList(elems...), nil

	case Tuple:
		elems := make([]value.Value, len(concrete))
		for i, element := range concrete {
			normalized, err := FromNative(element, reg)
			if err != nil {
				return nil, err
			}
			elems[i] = normalized
		}
		return value.NewTuple(elems...), nil

	case *Set:
		result, _ := value.NewSet()
		for _, element := range concrete.Elems() {
			normalized, err := FromNative(element, reg)
			if err != nil {
				return nil, err
			}
			if err := result.Add(normalized); err != nil {
				return nil, err
			}
		}
		return result, nil

	case *Dict:
		result := value.NewDict()
		for _, entry := range concrete.Entries() {
			key, err := FromNative(entry.Key, reg)
			if err != nil {
				return nil, err
			}
			entryValue, err := FromNative(entry.Value, reg)
			if err != nil {
				return nil, err
			}
			if err := result.Set(key, entryValue); err != nil {
				return nil, err
			}
		}
		return result, nil

	case map[string]any:
		// Go map iteration order is randomized; sort the keys so the
		// same map always encodes to the same bytes. Use *Dict when
		// a specific insertion order matters.
		keys := make([]string, 0, len(concrete))
		for key := range concrete {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		result := value.NewDict()
		for _, key := range keys {
			entryValue, err := FromNative(concrete[key], reg)
			if err != nil {
				return nil, err
			}
			if err := result.Set(value.Text(key), entryValue); err != nil {
				return nil, err
			}
		}
		return result, nil

	case *registry.Placeholder:
		return value.NewObject(concrete.TypeID, concrete.Fields), nil

	default:
		if reg != nil {
			obj, known, err := reg.Decompose(v)
			if err != nil {
				return nil, err
			}
			if known {
				return obj, nil
			}
		}
		return nil, fmt.Errorf("cannot encode Go type %T: not a representable kind and not registered", v)
	}
}

// ToNative denormalizes a decoded value tree into native Go data. reg
// may be nil, in which case every object becomes a
// *registry.Placeholder.
func ToNative(v value.Value, reg *registry.Registry) (any, error) {
	switch concrete := v.(type) {
	case value.Null:
		return nil, nil
	case value.Bool:
		return bool(concrete), nil
	case *value.Int:
		if small, fits := concrete.Int64(); fits {
			return small, nil
		}
		return concrete.Big(), nil
	case value.Float:
		return float64(concrete), nil
	case value.Bytes:
		return []byte(concrete), nil
	case value.Text:
		return string(concrete), nil

	case *value.List:
		elems := make([]any, concrete.Len())
		for i := 0; i < concrete.Len(); i++ {
			native, err := ToNative(concrete.At(i), reg)
			if err != nil {
				return nil, err
			}
			elems[i] = native
		}
		return elems, nil

	case *value.Tuple:
		elems := make(Tuple, concrete.Len())
		for i := 0; i < concrete.Len(); i++ {
			native, err := ToNative(concrete.At(i), reg)
			if err != nil {
				return nil, err
			}
			elems[i] = native
		}
		return elems, nil

	case *value.Set:
		result := &Set{index: make(map[string]struct{}, concrete.Len())}
		for _, element := range concrete.Elems() {
			native, err := ToNative(element, reg)
			if err != nil {
				return nil, err
			}
			if err := result.Add(native); err != nil {
				return nil, err
			}
		}
		return result, nil

	case *value.Dict:
		result := NewDict()
		for _, entry := range concrete.Entries() {
			key, err := ToNative(entry.Key, reg)
			if err != nil {
				return nil, err
			}
			entryValue, err := ToNative(entry.Value, reg)
			if err != nil {
				return nil, err
			}
			if err := result.Set(key, entryValue); err != nil {
				return nil, err
			}
		}
		return result, nil

	case *value.Object:
		if reg == nil {
			return &registry.Placeholder{TypeID: concrete.TypeID(), Fields: concrete.Fields()}, nil
		}
		return reg.Reconstruct(concrete)

	default:
		return nil, fmt.Errorf("cannot convert foreign value kind %s", v.Kind())
	}
}
