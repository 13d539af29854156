// Package secret seals provider API keys for storage at rest.
//
// A 32-byte key is derived from a passphrase with HKDF-SHA256, and values
// are encrypted with XChaCha20-Poly1305. Sealed text is base64 of
// nonce || ciphertext. Callers bind a sealed value to its context (for
// example user and provider) through the associated data argument.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo separates keys derived for credential sealing from any other use
// of the same passphrase.
const hkdfInfo = "promptforge credential sealing v1"

var (
	// ErrEmptyPassphrase indicates NewSealer was given no passphrase.
	ErrEmptyPassphrase = errors.New("empty passphrase")

	// ErrDecrypt indicates sealed text is malformed, tampered with, or was
	// sealed under a different passphrase or associated data.
	ErrDecrypt = errors.New("decrypt failed")
)

// Sealer encrypts and decrypts short secrets. Safe for concurrent use.
type Sealer struct {
	key []byte
}

// NewSealer derives a sealing key from passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext bound to aad and returns base64 text.
func (s *Sealer) Seal(plaintext, aad string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts text produced by Seal with the same aad.
// Returns ErrDecrypt for any malformed or unauthenticated input.
func (s *Sealer) Open(sealed, aad string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrDecrypt)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: sealed value too short", ErrDecrypt)
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, []byte(aad))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}
