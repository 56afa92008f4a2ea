// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package diag

import (
	"strings"
	"testing"

	"github.com/bumble-foundation/bumble/lib/value"
	"github.com/bumble-foundation/bumble/lib/wire"
)

func diagnose(t *testing.T, v value.Value) string {
	t.Helper()
	encoded, err := wire.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	notation, err := Diagnose(encoded)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	return notation
}

func TestDiagnoseScalars(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"null", value.Null{}, "null"},
		{"true", value.Bool(true), "true"},
		{"int", value.NewInt(-42), "-42"},
		{"text", value.Text("hi"), `"hi"`},
		{"bytes render as hex", value.Bytes("\x01\x02"), "h'0102'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diagnose(t, tt.v)
			if got != tt.want {
				t.Errorf("Diagnose = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnoseContainers(t *testing.T) {
	list := value.NewList(value.NewInt(1), value.Bool(true), value.Null{})
	if got := diagnose(t, list); got != "[1, true, null]" {
		t.Errorf("list notation = %q", got)
	}

	// Tuples render as arrays too; the view is lossy.
	tuple := value.NewTuple(value.NewInt(1), value.NewInt(2))
	if got := diagnose(t, tuple); got != "[1, 2]" {
		t.Errorf("tuple notation = %q", got)
	}
}

func TestDiagnosePreservesDictOrder(t *testing.T) {
	dict := value.NewDict()
	dict.Set(value.Text("zeta"), value.NewInt(1))
	dict.Set(value.Text("alpha"), value.NewInt(2))

	notation := diagnose(t, dict)
	zeta := strings.Index(notation, `"zeta"`)
	alpha := strings.Index(notation, `"alpha"`)
	if zeta < 0 || alpha < 0 {
		t.Fatalf("notation %q is missing a key", notation)
	}
	if zeta > alpha {
		t.Errorf("insertion order lost in %q", notation)
	}
}

func TestDiagnoseObject(t *testing.T) {
	fields := value.NewDict()
	fields.Set(value.Text("x"), value.NewInt(3))
	notation := diagnose(t, value.NewObject("app/point", fields))

	for _, fragment := range []string{`"type"`, `"app/point"`, `"fields"`, `"x"`} {
		if !strings.Contains(notation, fragment) {
			t.Errorf("notation %q is missing %q", notation, fragment)
		}
	}
}

func TestDiagnoseMalformedInput(t *testing.T) {
	if _, err := Diagnose([]byte("i01e")); err == nil {
		t.Error("malformed input should not diagnose")
	}
}
