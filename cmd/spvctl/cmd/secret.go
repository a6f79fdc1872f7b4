package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/efactura-api/pkg/vault"
)

func newEncryptSecretCmd(env *cliEnv) *cobra.Command {
	var key string
	c := &cobra.Command{
		Use:   "encrypt-secret <secreto>",
		Short: "Cifra un secreto con la clave de la bóveda (EFACTURA_ENCRYPTION_KEY)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				cfg, err := env.config()
				if err != nil {
					return err
				}
				key = cfg.EFactura.EncryptionKey
			}
			v := vault.New(key)
			if !v.Enabled() {
				return errors.New("EFACTURA_ENCRYPTION_KEY no configurada: el secreto quedaría en claro")
			}
			out, err := v.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	c.Flags().StringVar(&key, "key", "", "Clave de la bóveda (por defecto EFACTURA_ENCRYPTION_KEY)")
	return c
}
