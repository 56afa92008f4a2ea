// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"fmt"
	"math/big"
)

// Kind identifies which variant of the value model a Value is. The
// set of kinds is closed: the wire grammar reserves one marker shape
// per kind, and format evolution adds new kinds rather than redefining
// existing ones.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindList
	KindTuple
	KindSet
	KindDict
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindSet:
		return "set"
	case KindDict:
		return "dict"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Value is the tagged union over all representable kinds. The concrete
// types are Null, Bool, *Int, Float, Bytes, Text, *List, *Tuple, *Set,
// *Dict, and *Object; type-switch on a Value to access the variant.
type Value interface {
	Kind() Kind
}

// Null is the singleton null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Float is an IEEE-754 double, including NaN and both infinities.
type Float float64

func (Float) Kind() Kind { return KindFloat }

// Bytes is an opaque ordered sequence of octets. No text encoding is
// assumed or implied.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }

// Text is a UTF-8 string. Validity is enforced where Text crosses a
// boundary: the wire codec rejects invalid UTF-8 on both encode and
// decode, and canonical-key computation rejects it for set members and
// dict keys.
type Text string

func (Text) Kind() Kind { return KindText }

// Int is an arbitrary-precision signed integer. Magnitude is bounded
// only by memory.
type Int struct {
	x *big.Int
}

func (*Int) Kind() Kind { return KindInt }

// NewInt returns an Int holding the given 64-bit value.
func NewInt(i int64) *Int {
	return &Int{x: big.NewInt(i)}
}

// NewIntFromBig returns an Int holding a copy of b. The caller retains
// ownership of b.
func NewIntFromBig(b *big.Int) *Int {
	return &Int{x: new(big.Int).Set(b)}
}

// ParseInt parses an ASCII decimal integer (optional leading minus)
// of any magnitude.
func ParseInt(text string) (*Int, error) {
	x, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("parsing integer %q", text)
	}
	return &Int{x: x}, nil
}

// Big returns a copy of the integer as a *big.Int. Mutating the result
// does not affect the Int.
func (i *Int) Big() *big.Int {
	return new(big.Int).Set(i.x)
}

// Int64 returns the value as an int64 and true when it fits, or 0 and
// false when the magnitude exceeds the int64 range.
func (i *Int) Int64() (int64, bool) {
	if i.x.IsInt64() {
		return i.x.Int64(), true
	}
	return 0, false
}

// String returns the decimal representation. This is exactly the digit
// sequence the wire codec emits for the value.
func (i *Int) String() string {
	return i.x.Text(10)
}

// cmp reports the usual -1/0/+1 comparison against another Int.
func (i *Int) cmp(other *Int) int {
	return i.x.Cmp(other.x)
}

// List is an ordered sequence with mutable semantics.
type List struct {
	elems []Value
}

func (*List) Kind() Kind { return KindList }

// NewList returns a List holding the given elements. The variadic
// slice is copied.
func NewList(elems ...Value) *List {
	l := &List{elems: make([]Value, len(elems))}
	copy(l.elems, elems)
	return l
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// At returns the element at index i.
func (l *List) At(i int) Value { return l.elems[i] }

// SetAt replaces the element at index i.
func (l *List) SetAt(i int, v Value) { l.elems[i] = v }

// Append adds elements to the end of the list.
func (l *List) Append(elems ...Value) {
	l.elems = append(l.elems, elems...)
}

// Tuple is an ordered, fixed-arity sequence with immutable semantics.
// It is distinct from List because it participates in hashing: a Tuple
// of hashable members may itself be a set member or dict key.
type Tuple struct {
	elems []Value
}

func (*Tuple) Kind() Kind { return KindTuple }

// NewTuple returns a Tuple holding the given elements. The variadic
// slice is copied; the tuple's contents never change afterward.
func NewTuple(elems ...Value) *Tuple {
	t := &Tuple{elems: make([]Value, len(elems))}
	copy(t.elems, elems)
	return t
}

// Len returns the arity.
func (t *Tuple) Len() int { return len(t.elems) }

// At returns the element at index i.
func (t *Tuple) At(i int) Value { return t.elems[i] }

// Object is a typed record: a type identifier plus named field state.
// Reconstruction into a live application value happens only through an
// explicitly populated registry, never by resolving the type id
// against code.
type Object struct {
	typeID string
	fields *Dict
}

func (*Object) Kind() Kind { return KindObject }

// NewObject returns an Object with the given type identifier and field
// dict. A nil fields dict is treated as empty.
func NewObject(typeID string, fields *Dict) *Object {
	if fields == nil {
		fields = NewDict()
	}
	return &Object{typeID: typeID, fields: fields}
}

// TypeID returns the type identifier.
func (o *Object) TypeID() string { return o.typeID }

// Fields returns the field dict. The dict is owned by the object;
// callers that need an independent copy must build one.
func (o *Object) Fields() *Dict { return o.fields }
