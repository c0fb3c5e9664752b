package domain

import (
	"github.com/rentaldesk/searchsync/internal/errors"
)

// Field encryption errors.
var (
	// ErrInvalidKeySize indicates the field key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMissingKey indicates no field encryption key was configured.
	ErrMissingKey = errors.Wrap(errors.ErrInvalidInput, "field encryption key is required")

	// ErrInvalidKeyEncoding indicates the KMS-wrapped key is not valid base64.
	ErrInvalidKeyEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid key encoding")

	// ErrNotText is the panic value raised when a non-string value is handed to the
	// dynamic encryption entry point. It signals a caller bug, not bad data.
	ErrNotText = errors.New("field cipher: only string values can be encrypted")

	// ErrMalformedEnvelope indicates a stored value is not a valid "ivHex:cipherHex" pair.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed encrypted field")

	// ErrDecryptionFailed indicates the cipher rejected an envelope shaped value.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
