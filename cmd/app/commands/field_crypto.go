package commands

import (
	"fmt"
	"io"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
	cryptoService "github.com/rentaldesk/searchsync/internal/crypto/service"
)

// RunEncryptValue prints the encrypted form of value, as stored in encrypted
// columns. Useful to look up rows by an encrypted field from a SQL console.
func RunEncryptValue(cipher cryptoService.FieldCipher, writer io.Writer, value string) error {
	_, err := fmt.Fprintln(writer, cipher.Encrypt(value))
	return err
}

// RunDecryptValue prints the plaintext of an encrypted column value. Values that
// are not encrypted are printed unchanged; values that look encrypted but do not
// decrypt under the configured key are an error.
func RunDecryptValue(cipher cryptoService.FieldCipher, writer io.Writer, value string) error {
	plaintext, status := cipher.Open(value)
	if status == cryptoDomain.StatusUndecryptable {
		return fmt.Errorf("%w: value does not open with the configured key", cryptoDomain.ErrDecryptionFailed)
	}
	_, err := fmt.Fprintln(writer, plaintext)
	return err
}
