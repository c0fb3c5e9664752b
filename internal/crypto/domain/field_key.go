package domain

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// fieldKeyInfo binds HKDF output to this use so the same passphrase configured
// elsewhere never yields the same key.
const fieldKeyInfo = "searchsync-field-encryption"

// FieldKey is the 256-bit key shared by every encrypted column.
//
// The key is fixed for the lifetime of the process: ciphertext is deterministic
// and equality lookups on encrypted columns only work while every row was written
// under the same key.
type FieldKey struct {
	key []byte
}

// KMSKeeper is the subset of a KMS keeper needed to unwrap a field key.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// NewFieldKey copies raw into a FieldKey. raw must be exactly KeySize bytes.
func NewFieldKey(raw []byte) (*FieldKey, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, KeySize, len(raw))
	}
	key := make([]byte, KeySize)
	copy(key, raw)
	return &FieldKey{key: key}, nil
}

// ParseFieldKey builds a key from configuration.
//
// A 64 character hex string is used verbatim. Any other non-empty value is treated
// as a passphrase and stretched to 32 bytes with HKDF-SHA256.
func ParseFieldKey(value string) (*FieldKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrMissingKey
	}

	if len(value) == hex.EncodedLen(KeySize) {
		if raw, err := hex.DecodeString(value); err == nil {
			defer Zero(raw)
			return NewFieldKey(raw)
		}
	}

	raw := make([]byte, KeySize)
	defer Zero(raw)
	reader := hkdf.New(sha256.New, []byte(value), nil, []byte(fieldKeyInfo))
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, fmt.Errorf("failed to derive field key: %w", err)
	}
	return NewFieldKey(raw)
}

// UnwrapFieldKey decrypts a base64 KMS ciphertext into a FieldKey.
func UnwrapFieldKey(ctx context.Context, keeper KMSKeeper, wrapped string) (*FieldKey, error) {
	wrapped = strings.TrimSpace(wrapped)
	if wrapped == "" {
		return nil, ErrMissingKey
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	raw, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap field key: %w", err)
	}
	defer Zero(raw)

	return NewFieldKey(raw)
}

// Bytes exposes the key material. Callers must not retain or modify it.
func (k *FieldKey) Bytes() []byte {
	return k.key
}

// Close wipes the key material.
func (k *FieldKey) Close() {
	Zero(k.key)
}
