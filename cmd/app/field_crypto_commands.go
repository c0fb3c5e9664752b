package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rentaldesk/searchsync/cmd/app/commands"
)

func getFieldCryptoCommands() []*cli.Command {
	valueFlag := func(usage string) cli.Flag {
		return &cli.StringFlag{
			Name:     "value",
			Aliases:  []string{"v"},
			Required: true,
			Usage:    usage,
		}
	}

	return []*cli.Command{
		{
			Name:  "encrypt-value",
			Usage: "Print the encrypted column form of a value",
			Flags: []cli.Flag{valueFlag("Plaintext to encrypt")},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				cipher, err := container.FieldCipher(ctx)
				if err != nil {
					return err
				}
				return commands.RunEncryptValue(cipher, commands.DefaultIO().Writer, cmd.String("value"))
			},
		},
		{
			Name:  "decrypt-value",
			Usage: "Print the plaintext of an encrypted column value",
			Flags: []cli.Flag{valueFlag("Stored value in ivHex:cipherHex form")},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer()
				if err != nil {
					return err
				}
				defer shutdown(ctx, container)

				cipher, err := container.FieldCipher(ctx)
				if err != nil {
					return err
				}
				return commands.RunDecryptValue(cipher, commands.DefaultIO().Writer, cmd.String("value"))
			},
		},
	}
}
