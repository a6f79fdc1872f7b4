// Package cmd contiene los subcomandos de spvctl, la herramienta de operación e-Factura.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/efactura-api/internal/bootstrap"
	"github.com/jhoicas/efactura-api/pkg/config"
	"github.com/jhoicas/efactura-api/pkg/logger"
)

var version = "0.1.0"

// NewRootCmd construye el árbol de comandos. Cada llamada devuelve comandos nuevos
// (sin estado de flags compartido), lo que permite ejecutarlos en tests.
func NewRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "spvctl",
		Short: "Operación de la integración ANAF e-Factura (SPV)",
		Long: `spvctl agrupa tareas de operación del servicio e-Factura.

Examples:
  # Cifrar la contraseña de un certificado para guardarla en la base
  spvctl encrypt-secret 'parola'

  # Diagnosticar un certificado .p12/.pem
  spvctl check-cert certs/empresa.p12 --password 'parola'

  # Consultar una carga y actualizar la factura
  spvctl status --company <uuid> --upload 5001234567

  # Reconciliar todas las empresas con facturas pendientes
  spvctl sync --all`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Logs de depuración")

	env := &cliEnv{verbose: &verbose}
	root.AddCommand(
		newEncryptSecretCmd(env),
		newCheckCertCmd(),
		newSetCertCmd(env),
		newStatusCmd(env),
		newSyncCmd(env),
		newMigrateCmd(env),
	)
	return root
}

// Execute ejecuta spvctl con os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// cliEnv carga configuración y dependencias bajo demanda: los comandos offline
// (encrypt-secret, check-cert) no necesitan base de datos.
type cliEnv struct {
	verbose *bool
	cfg     *config.Config
}

func (e *cliEnv) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	e.cfg = cfg
	return cfg, nil
}

func (e *cliEnv) logger() *logger.Logger {
	level := "warn"
	if *e.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Env: "development", Level: level, Out: os.Stderr})
}

func (e *cliEnv) deps(ctx context.Context) (*bootstrap.Deps, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, e.logger().Zerolog())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("serializar salida: %w", err)
	}
	return nil
}
