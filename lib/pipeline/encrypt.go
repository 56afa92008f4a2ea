// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"filippo.io/age"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// keySize is the symmetric key size for the AEAD stage.
const keySize = 32

// encryptedBlobVersion is the version byte prepended to AEAD output.
// Included as additional authenticated data, so tampering with the
// version byte causes authentication failure.
const encryptedBlobVersion byte = 0x01

// encryptedBlobOverhead is the byte overhead per encrypted payload:
// 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16 (Poly1305 tag).
const encryptedBlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoStream is the HKDF-SHA256 info string for deriving the
// stage key from caller-supplied key material. Changing it invalidates
// every stream wrapped under the old derivation.
var hkdfInfoStream = []byte("bumble.pipeline.stream.v1")

// EncryptionStage encrypts the payload with XChaCha20-Poly1305. The
// stage key is derived from caller-supplied key material via
// HKDF-SHA256 — key material arrives out of band through the
// constructor and never appears in the envelope header. Forward output
// is self-contained:
//
//	[version: 1 byte] [nonce: 24 bytes, random] [ciphertext+tag]
//
// with the version byte as additional authenticated data, so params
// are empty.
type EncryptionStage struct {
	key []byte
}

// NewEncryptionStage derives the stage key from keyMaterial, which may
// be of any length (a passphrase, a provisioned key). The material is
// not retained.
func NewEncryptionStage(keyMaterial []byte) (*EncryptionStage, error) {
	if len(keyMaterial) == 0 {
		return nil, fmt.Errorf("encryption stage requires key material")
	}
	reader := hkdf.New(sha256.New, keyMaterial, nil, hkdfInfoStream)
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("deriving stage key: %w", err)
	}
	return &EncryptionStage{key: key}, nil
}

func (*EncryptionStage) ID() string { return "xchacha20poly1305" }

func (s *EncryptionStage) Forward(payload []byte) ([]byte, []byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 1+chacha20poly1305.NonceSizeX, len(payload)+encryptedBlobOverhead)
	output[0] = encryptedBlobVersion
	copy(output[1:], nonce[:])

	output = aead.Seal(output, nonce[:], payload, []byte{encryptedBlobVersion})
	return output, nil, nil
}

func (s *EncryptionStage) Inverse(params, transformed []byte) ([]byte, error) {
	if len(transformed) < encryptedBlobOverhead {
		return nil, fmt.Errorf("encrypted payload is %d bytes, minimum is %d (version + nonce + tag)",
			len(transformed), encryptedBlobOverhead)
	}

	version := transformed[0]
	if version != encryptedBlobVersion {
		return nil, fmt.Errorf("encrypted payload version %d is not supported (expected %d)",
			version, encryptedBlobVersion)
	}

	nonce := transformed[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := transformed[1+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte{version})
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key or tampered data): %w", err)
	}
	return plaintext, nil
}

// AgeStage encrypts to one or more age X25519 recipients. The wrapping
// side is configured with recipient public keys; the unwrapping side
// holds the matching identity. Either side of the configuration may be
// absent on a process that only wraps or only unwraps.
type AgeStage struct {
	recipients []age.Recipient
	identity   *age.X25519Identity
}

// NewAgeStage parses the recipient public keys (age1... format) and,
// when identityKey is non-empty, the private identity
// (AGE-SECRET-KEY-1... format).
func NewAgeStage(recipientKeys []string, identityKey string) (*AgeStage, error) {
	stage := &AgeStage{}

	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		stage.recipients = append(stage.recipients, recipient)
	}

	if identityKey != "" {
		identity, err := age.ParseX25519Identity(identityKey)
		if err != nil {
			return nil, fmt.Errorf("parsing identity key: %w", err)
		}
		stage.identity = identity
	}

	return stage, nil
}

func (*AgeStage) ID() string { return "age" }

func (s *AgeStage) Forward(payload []byte) ([]byte, []byte, error) {
	if len(s.recipients) == 0 {
		return nil, nil, fmt.Errorf("age stage has no recipients configured")
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, s.recipients...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return nil, nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil, nil
}

func (s *AgeStage) Inverse(params, transformed []byte) ([]byte, error) {
	if s.identity == nil {
		return nil, fmt.Errorf("age stage has no identity configured")
	}

	reader, err := age.Decrypt(bytes.NewReader(transformed), s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}
