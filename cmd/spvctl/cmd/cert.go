package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// certReport diagnóstico de un certificado.
type certReport struct {
	File        string    `json:"file"`
	Subject     string    `json:"subject"`
	Issuer      string    `json:"issuer"`
	Serial      string    `json:"serial"`
	NotBefore   time.Time `json:"not_before"`
	NotAfter    time.Time `json:"not_after"`
	Expired     bool      `json:"expired"`
	ChainLength int       `json:"chain_length"`
	SHA256      string    `json:"sha256"`
}

func newCheckCertCmd() *cobra.Command {
	var (
		password string
		certDir  string
	)
	c := &cobra.Command{
		Use:   "check-cert <archivo>",
		Short: "Verifica que un certificado .p12/.pfx/.pem se pueda abrir con la contraseña",
		Long: `Abre el bundle igual que la fábrica de canales mTLS y muestra el certificado
de cliente. Sirve para descartar problemas de ruta o contraseña antes de guardar
la configuración de una empresa.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := anaf.ResolveCertificatePath(certDir, args[0])
			if err != nil {
				return fmt.Errorf("archivo de certificado: %w", err)
			}
			cert, err := anaf.LoadCertificateFile(path, password)
			if err != nil {
				return fmt.Errorf("contraseña o formato inválido: %w", err)
			}
			if cert.Leaf == nil {
				return errors.New("el bundle no contiene certificado de cliente")
			}
			sum := sha256.Sum256(cert.Leaf.Raw)
			return printJSON(cmd.OutOrStdout(), certReport{
				File:        path,
				Subject:     cert.Leaf.Subject.String(),
				Issuer:      cert.Leaf.Issuer.String(),
				Serial:      cert.Leaf.SerialNumber.String(),
				NotBefore:   cert.Leaf.NotBefore,
				NotAfter:    cert.Leaf.NotAfter,
				Expired:     time.Now().After(cert.Leaf.NotAfter),
				ChainLength: len(cert.Certificate),
				SHA256:      hex.EncodeToString(sum[:]),
			})
		},
	}
	c.Flags().StringVarP(&password, "password", "p", "", "Contraseña del bundle")
	c.Flags().StringVar(&certDir, "cert-dir", "", "Directorio base para rutas relativas")
	return c
}

func newSetCertCmd(env *cliEnv) *cobra.Command {
	var (
		companyID string
		file      string
		password  string
	)
	c := &cobra.Command{
		Use:   "set-cert",
		Short: "Guarda el certificado de una empresa (contraseña cifrada con la bóveda)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			path, err := anaf.ResolveCertificatePath(cfg.EFactura.CertDir, file)
			if err != nil {
				return fmt.Errorf("archivo de certificado: %w", err)
			}
			if _, err := anaf.LoadCertificateFile(path, password); err != nil {
				return fmt.Errorf("contraseña o formato inválido: %w", err)
			}

			ctx := cmd.Context()
			deps, err := env.deps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			secret, err := deps.Vault.Encrypt(password)
			if err != nil {
				return err
			}
			if err := deps.Certificates.Upsert(ctx, &entity.CertificateConfig{
				CompanyID:           companyID,
				CertificateFile:     file,
				CertificatePassword: secret,
				UpdatedAt:           time.Now().UTC(),
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "certificado guardado para la empresa %s\n", companyID)
			return nil
		},
	}
	c.Flags().StringVar(&companyID, "company", "", "ID de la empresa")
	c.Flags().StringVar(&file, "file", "", "Archivo (relativo a EFACTURA_CERT_DIR o absoluto)")
	c.Flags().StringVarP(&password, "password", "p", "", "Contraseña del bundle")
	_ = c.MarkFlagRequired("company")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("password")
	return c
}
