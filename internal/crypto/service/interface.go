// Package service provides the field-level cipher used for every encrypted column,
// the lookup hash for hashed columns, and KMS access for unwrapping the field key.
package service

import (
	"context"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
)

// FieldCipher encrypts and decrypts single text values stored in encrypted columns.
type FieldCipher interface {
	// Encrypt returns the deterministic EncryptedField for plaintext.
	Encrypt(plaintext string) string

	// EncryptOptional encrypts a nullable value. nil stays nil.
	EncryptOptional(plaintext *string) *string

	// EncryptValue encrypts a dynamically typed value. It panics with
	// cryptoDomain.ErrNotText when v is not a string.
	EncryptValue(v any) string

	// Decrypt returns the plaintext for value, or value itself when it is not
	// ciphertext or cannot be decrypted. It never fails.
	Decrypt(value string) string

	// DecryptOptional decrypts a nullable value. nil stays nil.
	DecryptOptional(value *string) *string

	// Open is Decrypt plus a status telling plaintext, decrypted and undecryptable apart.
	Open(value string) (string, cryptoDomain.DecryptStatus)
}

// HashService provides deterministic hashing for columns that are looked up by equality
// but never read back (the user employee key).
type HashService interface {
	Hash(value []byte) string
}

// KMSService opens KMS keepers used to unwrap the field key.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
