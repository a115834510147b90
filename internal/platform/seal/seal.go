// Copyright (c) 2026 CoPla. All rights reserved.

// Package seal encrypts small secrets at rest, such as provider sessions
// stored on behalf of a user so the follow list can be synced later.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrMalformed is returned when a sealed value cannot be opened.
var ErrMalformed = errors.New("seal: malformed or tampered ciphertext")

// Sealer encrypts with XChaCha20-Poly1305. Output is base64url(nonce || ciphertext).
type Sealer struct {
	key []byte
}

// New derives a 32 byte key from secret.
//
// A secret that decodes as 32 bytes of hex or base64 is used verbatim; any
// other secret of at least 32 characters is hashed with SHA-256.
func New(secret string) (*Sealer, error) {
	if key, err := hex.DecodeString(secret); err == nil && len(key) == chacha20poly1305.KeySize {
		return &Sealer{key: key}, nil
	}
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) == chacha20poly1305.KeySize {
		return &Sealer{key: key}, nil
	}
	if len(secret) < chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal: secret must be at least %d characters", chacha20poly1305.KeySize)
	}
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}, nil
}

// Seal encrypts plaintext. The associated data binds the ciphertext to its
// owner so it cannot be replayed onto another row.
func (s *Sealer) Seal(plaintext, associated []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("seal: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal: read nonce: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(aead.Seal(nonce, nonce, plaintext, associated)), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string, associated []byte) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrMalformed
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("seal: init cipher: %w", err)
	}

	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, associated)
	if err != nil {
		return nil, ErrMalformed
	}
	return plaintext, nil
}
