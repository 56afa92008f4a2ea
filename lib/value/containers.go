// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package value

// Set is an unordered collection of unique hashable values. Iteration
// via Elems follows insertion order, which is an in-memory convenience
// only: the wire encoding is canonical regardless of insertion order.
type Set struct {
	elems []Value
	index map[string]struct{}
}

func (*Set) Kind() Kind { return KindSet }

// NewSet returns a Set holding the given elements. Duplicates collapse
// silently; a non-hashable element is an error.
func NewSet(elems ...Value) (*Set, error) {
	s := &Set{index: make(map[string]struct{}, len(elems))}
	for _, element := range elems {
		if err := s.Add(element); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts v into the set. Adding an element that is already
// present is a no-op. Returns an UnhashableKeyError if v is not a
// hashable kind.
func (s *Set) Add(v Value) error {
	key, err := CanonicalKey(v)
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

// Contains reports whether an element equal to v is present. A
// non-hashable v is never present.
func (s *Set) Contains(v Value) bool {
	key, err := CanonicalKey(v)
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
func (s *Set) Elems() []Value { return s.elems }

// DictEntry is a single key/value pair of a Dict.
type DictEntry struct {
	Key   Value
	Value Value
}

// Dict is a mapping from hashable values to values. Insertion order is
// observable state: Entries iterates in the order keys were first set,
// and the wire codec preserves that order end to end. Setting an
// existing key replaces its value in place without moving it.
type Dict struct {
	entries []DictEntry
	index   map[string]int
}

func (*Dict) Kind() Kind { return KindDict }

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set maps key to v. A key already present keeps its position. Returns
// an UnhashableKeyError if key is not a hashable kind.
func (d *Dict) Set(key, v Value) error {
	canonical, err := CanonicalKey(key)
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
func (d *Dict) Get(key Value) (Value, bool) {
	canonical, err := CanonicalKey(key)
	if err != nil {
		return nil, false
	}
	position, present := d.index[canonical]
	if !present {
		return nil, false
	}
	return d.entries[position].Value, true
}

// GetText is a convenience lookup for Text keys, the overwhelmingly
// common case for object field dicts.
func (d *Dict) GetText(key string) (Value, bool) {
	return d.Get(Text(key))
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Entries returns the entries in insertion order. The slice is shared
// with the dict; callers must not modify it.
func (d *Dict) Entries() []DictEntry { return d.entries }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Value {
	keys := make([]Value, len(d.entries))
	for i, entry := range d.entries {
		keys[i] = entry.Key
	}
	return keys
}
