// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/bumble-foundation/bumble/lib/value"
)

// Tuple is the native form of a tuple: an ordered, fixed-arity
// sequence, distinguishable from []any (which encodes as a list).
type Tuple []any

// Set is the native form of a set: unique hashable elements,
// insertion-ordered iteration in memory, canonical order on the wire.
type Set struct {
	elems []any
	index map[string]struct{}
}

// NewSet returns a Set holding the given elements. Duplicates collapse
// silently; a non-hashable element is an error.
func NewSet(elems ...any) (*Set, error) {
	s := &Set{index: make(map[string]struct{}, len(elems))}
	for _, element := range elems {
		if err := s.Add(element); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts v. Adding a present element is a no-op; a non-hashable v
// is an error.
func (s *Set) Add(v any) error {
	key, err := nativeKey(v)
	if err != nil {
		return err
	}
	if _, present := s.index[key]; present {
		return nil
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[key] = struct{}{}
	s.elems = append(s.elems, v)
	return nil
}

// Contains reports whether an element equal to v is present.
func (s *Set) Contains(v any) bool {
	key, err := nativeKey(v)
	if err != nil {
		return false
	}
	_, present := s.index[key]
	return present
}

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Elems returns the elements in insertion order. The slice is shared
// with the set; callers must not modify it.
func (s *Set) Elems() []any { return s.elems }

// DictEntry is a single key/value pair of a Dict.
type DictEntry struct {
	Key   any
	Value any
}

// Dict is the native form of a dict: hashable keys, insertion order
// preserved end to end. Setting an existing key replaces its value in
// place without moving it.
type Dict struct {
	entries []DictEntry
	index   map[string]int
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set maps key to v. A non-hashable key is an error.
func (d *Dict) Set(key, v any) error {
	canonical, err := nativeKey(key)
	if err != nil {
		return err
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if position, present := d.index[canonical]; present {
		d.entries[position].Value = v
		return nil
	}
	d.index[canonical] = len(d.entries)
	d.entries = append(d.entries, DictEntry{Key: key, Value: v})
	return nil
}

// Get returns the value mapped to key and whether the key is present.
func (d *Dict) Get(key any) (any, bool) {
	canonical, err := nativeKey(key)
	if err != nil {
		return nil, false
	}
	position, present := d.index[canonical]
	if !present {
		return nil, false
	}
	return d.entries[position].Value, true
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Entries returns the entries in insertion order. The slice is shared
// with the dict; callers must not modify it.
func (d *Dict) Entries() []DictEntry { return d.entries }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	keys := make([]any, len(d.entries))
	for i, entry := range d.entries {
		keys[i] = entry.Key
	}
	return keys
}

// nativeKey computes the canonical identity of a native hashable
// value by normalizing it into the value model. Hashable kinds never
// involve the registry, so normalization with a nil registry is
// sufficient.
func nativeKey(v any) (string, error) {
	normalized, err := FromNative(v, nil)
	if err != nil {
		return "", err
	}
	return value.CanonicalKey(normalized)
}
