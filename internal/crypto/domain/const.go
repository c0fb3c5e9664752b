package domain

// Sizes and separators of the EncryptedField format "ivHex:cipherHex".
const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32

	// IVSize is the CBC initialization vector size in bytes. The IV is the first
	// IVSize bytes of SHA-256(plaintext || key), which makes encryption deterministic.
	IVSize = 16

	// EnvelopeSeparator splits the hex IV from the hex ciphertext.
	EnvelopeSeparator = ":"
)

// DecryptStatus reports what happened when a stored value was opened.
type DecryptStatus int

const (
	// StatusPlaintext means the value is not envelope shaped and was returned as-is.
	StatusPlaintext DecryptStatus = iota
	// StatusDecrypted means the value was ciphertext and decrypted successfully.
	StatusDecrypted
	// StatusUndecryptable means the value looked like ciphertext but the cipher
	// rejected it; the original value was returned unchanged.
	StatusUndecryptable
)

// String returns a stable lowercase name for logs and metrics.
func (s DecryptStatus) String() string {
	switch s {
	case StatusPlaintext:
		return "plaintext"
	case StatusDecrypted:
		return "decrypted"
	case StatusUndecryptable:
		return "undecryptable"
	default:
		return "unknown"
	}
}
