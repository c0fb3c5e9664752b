package app

import (
	"context"
	"fmt"

	cryptoService "github.com/rentaldesk/searchsync/internal/crypto/service"
	recordsService "github.com/rentaldesk/searchsync/internal/records/service"
)

// KMSService returns the service that opens KMS keepers.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// FieldCipher returns the deterministic cipher of encrypted columns. The field
// key is unwrapped through the KMS when KMS_KEY_URI is set.
func (c *Container) FieldCipher(ctx context.Context) (cryptoService.FieldCipher, error) {
	c.fieldCipherInit.Do(func() {
		c.fieldCipher, c.fieldCipherErr = c.initFieldCipher(ctx)
	})
	return c.fieldCipher, c.fieldCipherErr
}

// Codec returns the per-entity encrypt and decrypt helpers.
func (c *Container) Codec(ctx context.Context) (*recordsService.Codec, error) {
	c.codecInit.Do(func() {
		c.codec, c.codecErr = c.initCodec(ctx)
	})
	return c.codec, c.codecErr
}

func (c *Container) initFieldCipher(ctx context.Context) (cryptoService.FieldCipher, error) {
	key, err := cryptoService.LoadFieldKey(ctx, c.KMSService(), c.config.KMSKeyURI, c.config.FieldEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load field encryption key: %w", err)
	}
	defer key.Close()

	cipher, err := cryptoService.NewAESCBCFieldCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create field cipher: %w", err)
	}
	return cipher, nil
}

func (c *Container) initCodec(ctx context.Context) (*recordsService.Codec, error) {
	cipher, err := c.FieldCipher(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get field cipher for codec: %w", err)
	}
	return recordsService.NewCodec(cipher, cryptoService.NewSHA256HashService(), c.Logger()), nil
}
