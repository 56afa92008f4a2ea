// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strconv"

	"github.com/bumble-foundation/bumble/lib/value"
	"github.com/bumble-foundation/bumble/lib/wire"
)

// stageRecord is one header entry: a stage id and the public params
// its inverse direction needs.
type stageRecord struct {
	id     string
	params []byte
}

// Wrap applies the stages' forward transforms in order and prepends
// the self-describing envelope header. With no stages the result is a
// trivial envelope (`i0e` plus the payload), which Unwrap handles like
// any other.
func Wrap(payload []byte, stages ...Stage) ([]byte, error) {
	transformed := payload
	records := make([]stageRecord, 0, len(stages))
	for _, stage := range stages {
		next, params, err := stage.Forward(transformed)
		if err != nil {
			return nil, fmt.Errorf("stage %q forward: %w", stage.ID(), err)
		}
		records = append(records, stageRecord{id: stage.ID(), params: params})
		transformed = next
	}

	header := append([]byte{'i'}, strconv.Itoa(len(records))...)
	header = append(header, 'e')
	for _, record := range records {
		var err error
		header, err = value.AppendCanonical(header, value.Text(record.id))
		if err != nil {
			return nil, fmt.Errorf("encoding envelope header: %w", err)
		}
		header, err = value.AppendCanonical(header, value.Bytes(record.params))
		if err != nil {
			return nil, fmt.Errorf("encoding envelope header: %w", err)
		}
	}

	return append(header, transformed...), nil
}

// Unwrap undoes a wrapped stream in self-describing mode: each header
// stage id is resolved in the caller-populated set, and the inverse
// transforms are applied in reverse order. An unknown id is an
// *UnregisteredStageError; a corrupted integrity-protected payload is
// an *IntegrityError.
func Unwrap(data []byte, set *StageSet) ([]byte, error) {
	records, payload, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	stages := make([]Stage, len(records))
	for i, record := range records {
		stage, known := set.Lookup(record.id)
		if !known {
			return nil, &UnregisteredStageError{StageID: record.id}
		}
		stages[i] = stage
	}

	return invert(records, stages, payload)
}

// UnwrapPipeline undoes a wrapped stream in explicit-configuration
// mode, for deployments that do not trust stream-embedded stage lists:
// the header must name exactly the given chain, in order, or the
// unwrap fails before any transform runs.
func UnwrapPipeline(data []byte, stages []Stage) ([]byte, error) {
	records, payload, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	if len(records) != len(stages) {
		return nil, fmt.Errorf("envelope names %d stages, configured pipeline has %d", len(records), len(stages))
	}
	for i, record := range records {
		if record.id != stages[i].ID() {
			return nil, fmt.Errorf("envelope stage %d is %q, configured pipeline expects %q", i, record.id, stages[i].ID())
		}
	}

	return invert(records, stages, payload)
}

func invert(records []stageRecord, stages []Stage, payload []byte) ([]byte, error) {
	for i := len(stages) - 1; i >= 0; i-- {
		next, err := stages[i].Inverse(records[i].params, payload)
		if err != nil {
			// Integrity failures pass through unwrapped so callers
			// can match on *IntegrityError.
			if _, isIntegrity := err.(*IntegrityError); isIntegrity {
				return nil, err
			}
			return nil, fmt.Errorf("stage %q inverse: %w", stages[i].ID(), err)
		}
		payload = next
	}
	return payload, nil
}

// parseHeader reads the stage count and per-stage id/params tokens,
// returning the records and the raw payload that follows them.
func parseHeader(data []byte) ([]stageRecord, []byte, error) {
	countValue, rest, err := wire.DecodeFirst(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing envelope stage count: %w", err)
	}
	countInt, isInt := countValue.(*value.Int)
	if !isInt {
		return nil, nil, fmt.Errorf("envelope header starts with %s, expected stage count integer", countValue.Kind())
	}
	count, fits := countInt.Int64()
	if !fits || count < 0 {
		return nil, nil, fmt.Errorf("envelope stage count %s out of range", countInt)
	}
	// The smallest possible record is an empty text token plus an
	// empty bytes token ("u0:0:", five bytes). A count the remaining
	// input cannot hold is rejected before anything is sized from it.
	if count > int64(len(rest)/5) {
		return nil, nil, fmt.Errorf("envelope stage count %d exceeds what %d remaining bytes could hold", count, len(rest))
	}

	records := make([]stageRecord, 0, count)
	for i := int64(0); i < count; i++ {
		idValue, afterID, err := wire.DecodeFirst(rest)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing envelope stage %d id: %w", i, err)
		}
		id, isText := idValue.(value.Text)
		if !isText {
			return nil, nil, fmt.Errorf("envelope stage %d id is %s, expected text", i, idValue.Kind())
		}

		paramsValue, afterParams, err := wire.DecodeFirst(afterID)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing envelope stage %d params: %w", i, err)
		}
		params, isBytes := paramsValue.(value.Bytes)
		if !isBytes {
			return nil, nil, fmt.Errorf("envelope stage %d params are %s, expected bytes", i, paramsValue.Kind())
		}

		records = append(records, stageRecord{id: string(id), params: []byte(params)})
		rest = afterParams
	}

	return records, rest, nil
}
