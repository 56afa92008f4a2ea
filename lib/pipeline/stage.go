// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/hex"
	"fmt"
)

// Stage is a reversible byte-to-byte transform. Forward returns the
// transformed payload plus any public parameters the inverse direction
// needs (a digest, an uncompressed size); params are recorded in the
// envelope header in the clear and must never contain secret material.
// Inverse receives those params back along with the transformed bytes.
//
// A Stage must be safe for concurrent use: one instance typically
// serves every wrap and unwrap call in the process.
type Stage interface {
	// ID identifies the stage in envelope headers. IDs are protocol
	// constants — decoding looks stages up by ID, so renaming one
	// breaks every stream wrapped under the old name.
	ID() string

	// Forward applies the transform.
	Forward(payload []byte) (transformed, params []byte, err error)

	// Inverse undoes the transform.
	Inverse(params, transformed []byte) ([]byte, error)
}

// IntegrityError reports a digest mismatch during unwrap: the payload
// was corrupted or tampered with after wrapping. Unwrap never returns
// corrupted data silently.
type IntegrityError struct {
	// StageID is the integrity stage that detected the mismatch.
	StageID string
	// Want is the digest recorded in the envelope header.
	Want []byte
	// Got is the digest recomputed over the received payload.
	Got []byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed in stage %q: header digest %s, computed %s",
		e.StageID, hex.EncodeToString(e.Want), hex.EncodeToString(e.Got))
}

// UnregisteredStageError reports an envelope header naming a stage id
// that the decoding side has not registered. Fatal to the unwrap call:
// an unknown transform cannot be skipped.
type UnregisteredStageError struct {
	StageID string
}

func (e *UnregisteredStageError) Error() string {
	return fmt.Sprintf("envelope names stage %q, which is not registered on the decoding side", e.StageID)
}

// StageSet is the decode-side registry of known stages. Like the
// object registry, it is populated once during process initialization
// and read-only afterward; concurrent unwrap calls may share it
// without locking.
type StageSet struct {
	stages map[string]Stage
}

// NewStageSet returns a set containing the given stages.
func NewStageSet(stages ...Stage) (*StageSet, error) {
	set := &StageSet{stages: make(map[string]Stage, len(stages))}
	for _, stage := range stages {
		if err := set.Register(stage); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Register adds a stage to the set. A duplicate id is an error.
func (s *StageSet) Register(stage Stage) error {
	if _, exists := s.stages[stage.ID()]; exists {
		return fmt.Errorf("registering stage %q: already registered", stage.ID())
	}
	s.stages[stage.ID()] = stage
	return nil
}

// Lookup returns the stage registered under id.
func (s *StageSet) Lookup(id string) (Stage, bool) {
	stage, exists := s.stages[id]
	return stage, exists
}
