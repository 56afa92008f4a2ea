// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"

	"github.com/bumble-foundation/bumble/lib/value"
)

// StructuralError reports malformed input to Decode: truncation, an
// unknown marker byte, a non-canonical token, a duplicate set member
// or dict key, or bytes left over after the outermost value. It is
// always fatal to the decode call; nothing is partially recovered.
// Callers can use errors.As to extract the offset:
//
//	var structural *wire.StructuralError
//	if errors.As(err, &structural) { ... structural.Offset ... }
type StructuralError struct {
	// Offset is the byte position in the input where the problem was
	// detected.
	Offset int
	// Message describes what was expected versus what was found.
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at offset %d: %s", e.Offset, e.Message)
}

// CyclicValueError reports that Encode reached a container that is its
// own ancestor. The value graph must be acyclic; identity and shared
// references are not modeled by the format.
type CyclicValueError struct {
	// ContainerKind is the kind of the container that closed the cycle.
	ContainerKind value.Kind
}

func (e *CyclicValueError) Error() string {
	return fmt.Sprintf("cyclic value graph: %s container contains itself", e.ContainerKind)
}
