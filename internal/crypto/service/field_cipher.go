package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
)

// AESCBCFieldCipher implements FieldCipher with AES-256-CBC and a synthetic IV.
//
// The IV is the first 16 bytes of SHA-256(plaintext || key), so the same plaintext
// always produces the same EncryptedField under a fixed key. That is what lets the
// back office run equality lookups directly against encrypted columns. It also leaks
// whether two stored values are equal; fields that cannot accept that leak must not
// go through this cipher.
//
// The output format is "ivHex:cipherHex" with lowercase hex and PKCS#7 padding.
//
// Thread safety: the cipher is immutable after construction and safe for concurrent use.
type AESCBCFieldCipher struct {
	block cipher.Block
	key   []byte
}

// NewAESCBCFieldCipher creates a cipher bound to key.
func NewAESCBCFieldCipher(key *cryptoDomain.FieldKey) (*AESCBCFieldCipher, error) {
	if key == nil || len(key.Bytes()) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	raw := make([]byte, cryptoDomain.KeySize)
	copy(raw, key.Bytes())

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &AESCBCFieldCipher{block: block, key: raw}, nil
}

// Encrypt returns the deterministic EncryptedField for plaintext. The empty string
// is encrypted like any other value.
func (c *AESCBCFieldCipher) Encrypt(plaintext string) string {
	iv := c.syntheticIV(plaintext)
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + cryptoDomain.EnvelopeSeparator + hex.EncodeToString(ciphertext)
}

// EncryptOptional encrypts a nullable value. nil is never encrypted.
func (c *AESCBCFieldCipher) EncryptOptional(plaintext *string) *string {
	if plaintext == nil {
		return nil
	}
	encrypted := c.Encrypt(*plaintext)
	return &encrypted
}

// EncryptValue encrypts v, which must be a string or a non-nil *string.
// Any other value is a programming error and panics with cryptoDomain.ErrNotText.
func (c *AESCBCFieldCipher) EncryptValue(v any) string {
	switch value := v.(type) {
	case string:
		return c.Encrypt(value)
	case *string:
		if value != nil {
			return c.Encrypt(*value)
		}
	}
	panic(fmt.Errorf("%w: got %T", cryptoDomain.ErrNotText, v))
}

// Decrypt returns the plaintext of value. Legacy plaintext, empty strings and
// anything the cipher rejects come back unchanged.
func (c *AESCBCFieldCipher) Decrypt(value string) string {
	plaintext, _ := c.Open(value)
	return plaintext
}

// DecryptOptional decrypts a nullable value. nil stays nil.
func (c *AESCBCFieldCipher) DecryptOptional(value *string) *string {
	if value == nil {
		return nil
	}
	plaintext := c.Decrypt(*value)
	return &plaintext
}

// Open decrypts value and reports how the result was obtained. It never panics and
// never returns an error: callers decide from the status whether to log or count.
func (c *AESCBCFieldCipher) Open(value string) (string, cryptoDomain.DecryptStatus) {
	if !IsEncrypted(value) {
		return value, cryptoDomain.StatusPlaintext
	}

	plaintext, err := c.open(value)
	if err != nil {
		return value, cryptoDomain.StatusUndecryptable
	}
	return plaintext, cryptoDomain.StatusDecrypted
}

func (c *AESCBCFieldCipher) open(value string) (string, error) {
	ivHex, cipherHex, ok := splitEnvelope(value)
	if !ok {
		return "", cryptoDomain.ErrMalformedEnvelope
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != cryptoDomain.IVSize {
		return "", cryptoDomain.ErrMalformedEnvelope
	}

	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", cryptoDomain.ErrMalformedEnvelope
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func (c *AESCBCFieldCipher) syntheticIV(plaintext string) []byte {
	h := sha256.New()
	h.Write([]byte(plaintext))
	h.Write(c.key)
	return h.Sum(nil)[:cryptoDomain.IVSize]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+padding), data...), bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, cryptoDomain.ErrDecryptionFailed
		}
	}
	return data[:len(data)-padding], nil
}
