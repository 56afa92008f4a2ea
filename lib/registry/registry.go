// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry is the sole mechanism by which object tokens become
// live application values, and the codec's central safety boundary.
//
// A Registry binds type identifiers to (decompose, reconstruct)
// function pairs supplied by the embedding application before any
// decoding of untrusted input. The codec never looks up, imports, or
// resolves anything by name from the decoded byte stream: a decoded
// type identifier either matches a reconstruct function the decoding
// process itself registered, or the object degrades to an inert
// [Placeholder] carrying the identifier and the raw field map. Decode
// of untrusted bytes can therefore never cause code execution,
// regardless of registry contents.
//
// Concurrency contract: populate a Registry once during process
// initialization, then treat it as read-only. Concurrent encode and
// decode calls may read it freely without locking; Register during
// active encode or decode calls must be serialized by the caller.
package registry

import (
	"fmt"
	"reflect"

	"github.com/bumble-foundation/bumble/lib/value"
)

// DecomposeFunc extracts the reconstructable state of an application
// value as a field dict. Called during encode on values of a
// registered type.
type DecomposeFunc func(obj any) (*value.Dict, error)

// ReconstructFunc builds an application value from a decoded field
// dict. Called during decode for a registered type identifier. The
// field dict comes from untrusted input; implementations must validate
// it.
type ReconstructFunc func(fields *value.Dict) (any, error)

// Placeholder is the inert decode result for an object whose type
// identifier has no registered reconstruct function. It preserves the
// identifier and field map losslessly, so data encoded by a newer
// registry survives a round trip through an older one: the application
// may interpret it explicitly later, or re-encode it unchanged.
type Placeholder struct {
	// TypeID is the type identifier from the stream.
	TypeID string
	// Fields is the decoded field dict, exactly as a registered
	// reconstruct function would have received it.
	Fields *value.Dict
}

// entry is one registered type binding.
type entry struct {
	typeID      string
	decompose   DecomposeFunc
	reconstruct ReconstructFunc
}

// Registry maps type identifiers to decompose/reconstruct pairs, with
// a reflect.Type index so the encoder can recognize registered Go
// types without any per-type glue at the call site.
type Registry struct {
	byID   map[string]*entry
	byType map[reflect.Type]*entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byID:   make(map[string]*entry),
		byType: make(map[reflect.Type]*entry),
	}
}

// Register binds typeID to a decompose/reconstruct pair.
//
// prototype supplies the Go type the encoder should recognize; pass a
// zero value of the application type (for example MyType{} or
// (*MyType)(nil)). A nil prototype registers for decode only.
// decompose may be nil for a decode-only binding and reconstruct may
// be nil for an encode-only binding, but at least one must be set.
//
// Registering a typeID or prototype type twice is an error: bindings
// are process configuration, and silent replacement would make the
// encode/decode behavior depend on registration order.
func (r *Registry) Register(typeID string, prototype any, decompose DecomposeFunc, reconstruct ReconstructFunc) error {
	if typeID == "" {
		return fmt.Errorf("registering type: empty type identifier")
	}
	if decompose == nil && reconstruct == nil {
		return fmt.Errorf("registering type %q: need a decompose or reconstruct function", typeID)
	}
	if _, exists := r.byID[typeID]; exists {
		return fmt.Errorf("registering type %q: already registered", typeID)
	}

	binding := &entry{typeID: typeID, decompose: decompose, reconstruct: reconstruct}

	if prototype != nil {
		goType := reflect.TypeOf(prototype)
		if existing, exists := r.byType[goType]; exists {
			return fmt.Errorf("registering type %q: Go type %v already bound to %q", typeID, goType, existing.typeID)
		}
		if decompose == nil {
			return fmt.Errorf("registering type %q: prototype given without a decompose function", typeID)
		}
		r.byType[goType] = binding
	}

	r.byID[typeID] = binding
	return nil
}

// Decompose turns an application value of a registered type into an
// object value. The second result is false when obj's type is not
// registered for encoding.
func (r *Registry) Decompose(obj any) (*value.Object, bool, error) {
	binding, known := r.byType[reflect.TypeOf(obj)]
	if !known {
		return nil, false, nil
	}
	fields, err := binding.decompose(obj)
	if err != nil {
		return nil, true, fmt.Errorf("decomposing %q: %w", binding.typeID, err)
	}
	return value.NewObject(binding.typeID, fields), true, nil
}

// Reconstruct turns a decoded object value into an application value.
// An unregistered type identifier is not an error: the result is a
// *Placeholder and no function is invoked.
func (r *Registry) Reconstruct(obj *value.Object) (any, error) {
	binding, known := r.byID[obj.TypeID()]
	if !known || binding.reconstruct == nil {
		return &Placeholder{TypeID: obj.TypeID(), Fields: obj.Fields()}, nil
	}
	reconstructed, err := binding.reconstruct(obj.Fields())
	if err != nil {
		return nil, fmt.Errorf("reconstructing %q: %w", obj.TypeID(), err)
	}
	return reconstructed, nil
}

// Registered reports whether typeID has any binding.
func (r *Registry) Registered(typeID string) bool {
	_, exists := r.byID[typeID]
	return exists
}
