// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"filippo.io/age"
)

// samplePayload compresses well and is long enough to exercise the
// block paths of both compression stages.
var samplePayload = []byte(strings.Repeat("du4:nameu5:alicee", 64))

func newTestStageSet(t *testing.T, stages ...Stage) *StageSet {
	t.Helper()
	set, err := NewStageSet(stages...)
	if err != nil {
		t.Fatalf("NewStageSet: %v", err)
	}
	return set
}

func newTestEncryptionStage(t *testing.T) *EncryptionStage {
	t.Helper()
	stage, err := NewEncryptionStage([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("NewEncryptionStage: %v", err)
	}
	return stage
}

func newTestAgeStage(t *testing.T) *AgeStage {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	stage, err := NewAgeStage([]string{identity.Recipient().String()}, identity.String())
	if err != nil {
		t.Fatalf("NewAgeStage: %v", err)
	}
	return stage
}

func TestWrapUnwrapSingleStage(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
	}{
		{"null", NullStage{}},
		{"base64", Base64Stage{}},
		{"hex", HexStage{}},
		{"sha256", SHA256Stage{}},
		{"blake3", Blake3Stage{}},
		{"zstd", ZstdStage{}},
		{"lz4", LZ4Stage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped, err := Wrap(samplePayload, tt.stage)
			if err != nil {
				t.Fatalf("Wrap: %v", err)
			}

			unwrapped, err := Unwrap(wrapped, newTestStageSet(t, tt.stage))
			if err != nil {
				t.Fatalf("Unwrap: %v", err)
			}
			if !bytes.Equal(unwrapped, samplePayload) {
				t.Error("payload did not survive the round trip")
			}
		})
	}
}

func TestWrapWithoutStages(t *testing.T) {
	wrapped, err := Wrap(samplePayload)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if !bytes.HasPrefix(wrapped, []byte("i0e")) {
		t.Errorf("trivial envelope starts with %q", wrapped[:3])
	}

	unwrapped, err := Unwrap(wrapped, newTestStageSet(t))
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(unwrapped, samplePayload) {
		t.Error("payload did not survive the trivial envelope")
	}
}

func TestWrapUnwrapChain(t *testing.T) {
	encryption := newTestEncryptionStage(t)
	chain := []Stage{ZstdStage{}, encryption, SHA256Stage{}}

	wrapped, err := Wrap(samplePayload, chain...)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	set := newTestStageSet(t, ZstdStage{}, encryption, SHA256Stage{})
	unwrapped, err := Unwrap(wrapped, set)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(unwrapped, samplePayload) {
		t.Error("payload did not survive the chain")
	}
}

func TestUnwrapDetectsCorruption(t *testing.T) {
	wrapped, err := Wrap(samplePayload, ZstdStage{}, SHA256Stage{})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	// Flip one bit of the transformed payload (the envelope tail).
	corrupted := bytes.Clone(wrapped)
	corrupted[len(corrupted)-1] ^= 0x01

	_, err = Unwrap(corrupted, newTestStageSet(t, ZstdStage{}, SHA256Stage{}))
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if integrity.StageID != "sha256" {
		t.Errorf("StageID = %q, want sha256", integrity.StageID)
	}
	if bytes.Equal(integrity.Want, integrity.Got) {
		t.Error("Want and Got digests should differ")
	}
}

func TestUnwrapDetectsCorruptionBlake3(t *testing.T) {
	wrapped, err := Wrap(samplePayload, Blake3Stage{})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	corrupted := bytes.Clone(wrapped)
	corrupted[len(corrupted)-1] ^= 0x80

	_, err = Unwrap(corrupted, newTestStageSet(t, Blake3Stage{}))
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

func TestUnwrapUnregisteredStage(t *testing.T) {
	wrapped, err := Wrap(samplePayload, Base64Stage{})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	_, err = Unwrap(wrapped, newTestStageSet(t, NullStage{}))
	var unregistered *UnregisteredStageError
	if !errors.As(err, &unregistered) {
		t.Fatalf("expected UnregisteredStageError, got %v", err)
	}
	if unregistered.StageID != "base64" {
		t.Errorf("StageID = %q, want base64", unregistered.StageID)
	}
}

func TestUnwrapPipeline(t *testing.T) {
	wrapped, err := Wrap(samplePayload, ZstdStage{}, SHA256Stage{})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	t.Run("matching chain", func(t *testing.T) {
		unwrapped, err := UnwrapPipeline(wrapped, []Stage{ZstdStage{}, SHA256Stage{}})
		if err != nil {
			t.Fatalf("UnwrapPipeline: %v", err)
		}
		if !bytes.Equal(unwrapped, samplePayload) {
			t.Error("payload did not survive")
		}
	})

	t.Run("wrong stage order", func(t *testing.T) {
		if _, err := UnwrapPipeline(wrapped, []Stage{SHA256Stage{}, ZstdStage{}}); err == nil {
			t.Error("reordered chain should be rejected")
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		if _, err := UnwrapPipeline(wrapped, []Stage{ZstdStage{}}); err == nil {
			t.Error("shorter chain should be rejected")
		}
	})
}

func TestUnwrapMalformedHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not an integer", "u3:abc"},
		{"negative count", "i-1e"},
		{"count larger than input could hold", "i4611686018427387904e"},
		{"count past int64", "i99999999999999999999e"},
		{"count without records", "i2eu4:zstd"},
		{"id not text", "i1ei5e0:"},
		{"params not bytes", "i1eu4:zstdTe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unwrap([]byte(tt.input), newTestStageSet(t, ZstdStage{})); err == nil {
				t.Errorf("Unwrap(%q) should fail", tt.input)
			}
		})
	}
}

func TestZstdStage(t *testing.T) {
	t.Run("compresses repetitive input", func(t *testing.T) {
		transformed, params, err := ZstdStage{}.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if len(transformed) >= len(samplePayload) {
			t.Errorf("compressed %d bytes to %d", len(samplePayload), len(transformed))
		}

		restored, err := ZstdStage{}.Inverse(params, transformed)
		if err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		if !bytes.Equal(restored, samplePayload) {
			t.Error("round trip mismatch")
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		transformed, params, err := ZstdStage{}.Forward(nil)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		restored, err := ZstdStage{}.Inverse(params, transformed)
		if err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		if len(restored) != 0 {
			t.Errorf("restored %d bytes from empty payload", len(restored))
		}
	})

	t.Run("size params mismatch", func(t *testing.T) {
		transformed, _, err := ZstdStage{}.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		// Oversized params must produce an error, never an allocation
		// sized from the untrusted header.
		if _, err := (ZstdStage{}).Inverse([]byte("4611686018427387904"), transformed); err == nil {
			t.Error("size params far beyond the frame content should be rejected")
		}
		if _, err := (ZstdStage{}).Inverse([]byte("1"), transformed); err == nil {
			t.Error("wrong uncompressed size should be rejected")
		}
		if _, err := (ZstdStage{}).Inverse([]byte("bogus"), transformed); err == nil {
			t.Error("non-decimal params should be rejected")
		}
	})
}

func TestLZ4Stage(t *testing.T) {
	t.Run("compresses repetitive input", func(t *testing.T) {
		transformed, params, err := LZ4Stage{}.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if len(transformed) >= len(samplePayload) {
			t.Errorf("compressed %d bytes to %d", len(samplePayload), len(transformed))
		}

		restored, err := LZ4Stage{}.Inverse(params, transformed)
		if err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		if !bytes.Equal(restored, samplePayload) {
			t.Error("round trip mismatch")
		}
	})

	t.Run("implausible size params", func(t *testing.T) {
		// A claimed uncompressed size no LZ4 block could reach must
		// not size an allocation; a short stream could otherwise
		// demand gigabytes.
		if _, err := (LZ4Stage{}).Inverse([]byte("4611686018427387904"), []byte("x")); err == nil {
			t.Error("size beyond the block format's expansion ratio should be rejected")
		}
	})

	t.Run("incompressible input stored raw", func(t *testing.T) {
		// A short high-entropy payload that LZ4 cannot shrink.
		payload := []byte{0x8f, 0x3a, 0xd1, 0x07, 0x66, 0xb2, 0xe9, 0x4c, 0x25, 0xfa, 0x90, 0x1b}

		transformed, params, err := LZ4Stage{}.Forward(payload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if !bytes.Equal(transformed, payload) {
			t.Errorf("expected raw storage, got %d bytes", len(transformed))
		}

		restored, err := LZ4Stage{}.Inverse(params, transformed)
		if err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		if !bytes.Equal(restored, payload) {
			t.Error("round trip mismatch")
		}
	})
}

func TestEncryptionStage(t *testing.T) {
	stage := newTestEncryptionStage(t)

	t.Run("round trip", func(t *testing.T) {
		transformed, params, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if len(params) != 0 {
			t.Errorf("params should be empty, got %d bytes", len(params))
		}
		if len(transformed) != len(samplePayload)+encryptedBlobOverhead {
			t.Errorf("ciphertext is %d bytes, want %d", len(transformed), len(samplePayload)+encryptedBlobOverhead)
		}

		restored, err := stage.Inverse(nil, transformed)
		if err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		if !bytes.Equal(restored, samplePayload) {
			t.Error("round trip mismatch")
		}
	})

	t.Run("fresh nonce per call", func(t *testing.T) {
		first, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		second, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if bytes.Equal(first, second) {
			t.Error("two encryptions of the same payload should not match")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		transformed, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		other, err := NewEncryptionStage([]byte("a different passphrase"))
		if err != nil {
			t.Fatalf("NewEncryptionStage: %v", err)
		}
		if _, err := other.Inverse(nil, transformed); err == nil {
			t.Error("decryption with the wrong key should fail")
		}
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		transformed, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		transformed[len(transformed)-1] ^= 0x01
		if _, err := stage.Inverse(nil, transformed); err == nil {
			t.Error("tampered ciphertext should fail authentication")
		}
	})

	t.Run("tampered version byte", func(t *testing.T) {
		transformed, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		transformed[0] = 0x7f
		if _, err := stage.Inverse(nil, transformed); err == nil {
			t.Error("unknown version byte should be rejected")
		}
	})

	t.Run("truncated blob", func(t *testing.T) {
		if _, err := stage.Inverse(nil, make([]byte, encryptedBlobOverhead-1)); err == nil {
			t.Error("blob shorter than the fixed overhead should be rejected")
		}
	})

	t.Run("empty key material", func(t *testing.T) {
		if _, err := NewEncryptionStage(nil); err == nil {
			t.Error("empty key material should be rejected")
		}
	})
}

func TestAgeStage(t *testing.T) {
	stage := newTestAgeStage(t)

	wrapped, err := Wrap(samplePayload, stage)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	unwrapped, err := Unwrap(wrapped, newTestStageSet(t, stage))
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(unwrapped, samplePayload) {
		t.Error("round trip mismatch")
	}

	t.Run("no recipients", func(t *testing.T) {
		decryptOnly, err := NewAgeStage(nil, "")
		if err != nil {
			t.Fatalf("NewAgeStage: %v", err)
		}
		if _, _, err := decryptOnly.Forward(samplePayload); err == nil {
			t.Error("forward without recipients should fail")
		}
	})

	t.Run("no identity", func(t *testing.T) {
		transformed, _, err := stage.Forward(samplePayload)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			t.Fatalf("GenerateX25519Identity: %v", err)
		}
		encryptOnly, err := NewAgeStage([]string{identity.Recipient().String()}, "")
		if err != nil {
			t.Fatalf("NewAgeStage: %v", err)
		}
		if _, err := encryptOnly.Inverse(nil, transformed); err == nil {
			t.Error("inverse without an identity should fail")
		}
	})

	t.Run("bad recipient key", func(t *testing.T) {
		if _, err := NewAgeStage([]string{"age1not-a-key"}, ""); err == nil {
			t.Error("malformed recipient key should be rejected")
		}
	})
}

func TestStageSetValidation(t *testing.T) {
	if _, err := NewStageSet(NullStage{}, NullStage{}); err == nil {
		t.Error("duplicate stage ids should be rejected")
	}
}

func BenchmarkWrapChain(b *testing.B) {
	stage, err := NewEncryptionStage([]byte("benchmark key material"))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(samplePayload)))
	for i := 0; i < b.N; i++ {
		if _, err := Wrap(samplePayload, ZstdStage{}, stage, SHA256Stage{}); err != nil {
			b.Fatal(err)
		}
	}
}
