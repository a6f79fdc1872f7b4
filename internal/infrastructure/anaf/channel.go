// Package anaf implementa el transporte hacia el SPV de ANAF (e-Factura): canales mTLS por
// empresa, ejecución de peticiones y normalización de las respuestas.
package anaf

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/domain/repository"
	"github.com/jhoicas/efactura-api/pkg/vault"
)

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// ChannelProvider entrega un canal mTLS listo para hablar con el SPV en nombre de una empresa.
type ChannelProvider interface {
	CreateChannel(ctx context.Context, companyID string) (*Channel, error)
}

// ── Canal ──────────────────────────────────────────────────────────────────────

// Channel cliente HTTP autenticado con el certificado de una empresa.
type Channel struct {
	CompanyID string
	client    *http.Client
	transport *http.Transport
	leaf      *x509.Certificate
	shared    bool // pertenece a CachedChannelFactory; Close no lo libera
}

// HTTPClient devuelve el cliente configurado con el certificado de la empresa.
func (c *Channel) HTTPClient() *http.Client { return c.client }

// Certificate certificado hoja presentado en el handshake.
func (c *Channel) Certificate() *x509.Certificate { return c.leaf }

// Close libera las conexiones ociosas. En canales cacheados no hace nada.
func (c *Channel) Close() {
	if c == nil || c.shared {
		return
	}
	c.release()
}

func (c *Channel) release() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

func newChannel(companyID string, cert tls.Certificate, rootCAs *x509.CertPool, timeout time.Duration) *Channel {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			RootCAs:      rootCAs, // nil = raíces del sistema
			MinVersion:   tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 15 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 2,
	}
	return &Channel{
		CompanyID: companyID,
		client:    &http.Client{Transport: transport, Timeout: timeout},
		transport: transport,
		leaf:      cert.Leaf,
	}
}

// ── Fábrica ────────────────────────────────────────────────────────────────────

// ChannelFactory construye un canal nuevo en cada llamada a partir del certificado
// guardado para la empresa.
type ChannelFactory struct {
	certs   repository.CertificateConfigRepository
	vault   *vault.Vault
	certDir string
	rootCAs *x509.CertPool
	timeout time.Duration
	logger  zerolog.Logger
}

// ChannelOption personaliza la fábrica.
type ChannelOption func(*ChannelFactory)

// WithCertDir directorio base para rutas de certificado relativas.
func WithCertDir(dir string) ChannelOption {
	return func(f *ChannelFactory) { f.certDir = dir }
}

// WithRootCAs raíces de confianza para el servidor (tests y sandboxes con CA propia).
func WithRootCAs(pool *x509.CertPool) ChannelOption {
	return func(f *ChannelFactory) { f.rootCAs = pool }
}

// WithTimeout timeout total por petición; 0 deja solo el contexto del llamador.
func WithTimeout(d time.Duration) ChannelOption {
	return func(f *ChannelFactory) { f.timeout = d }
}

// WithLogger logger de la fábrica.
func WithLogger(l zerolog.Logger) ChannelOption {
	return func(f *ChannelFactory) { f.logger = l }
}

// NewChannelFactory construye la fábrica. v puede no tener clave (modo passthrough).
func NewChannelFactory(certs repository.CertificateConfigRepository, v *vault.Vault, opts ...ChannelOption) *ChannelFactory {
	f := &ChannelFactory{
		certs:  certs,
		vault:  v,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ ChannelProvider = (*ChannelFactory)(nil)

// CreateChannel carga la configuración de la empresa y construye un canal mTLS nuevo.
func (f *ChannelFactory) CreateChannel(ctx context.Context, companyID string) (*Channel, error) {
	cfg, err := f.loadConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return f.build(companyID, cfg)
}

func (f *ChannelFactory) loadConfig(ctx context.Context, companyID string) (*entity.CertificateConfig, error) {
	cfg, err := f.certs.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("anaf: cargar certificado de la empresa: %w", err)
	}
	if cfg == nil || strings.TrimSpace(cfg.CertificateFile) == "" || cfg.CertificatePassword == "" {
		return nil, &domanaf.ConfigurationError{CompanyID: companyID, Err: domanaf.ErrCertificateNotConfigured}
	}
	return cfg, nil
}

func (f *ChannelFactory) build(companyID string, cfg *entity.CertificateConfig) (*Channel, error) {
	path, err := ResolveCertificatePath(f.certDir, cfg.CertificateFile)
	if err != nil {
		return nil, &domanaf.ConfigurationError{CompanyID: companyID, Reason: err.Error(), Err: domanaf.ErrCertificateFileNotFound}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domanaf.ConfigurationError{CompanyID: companyID, Reason: err.Error(), Err: domanaf.ErrCertificateFileNotFound}
	}

	password := f.vault.Decrypt(cfg.CertificatePassword)
	cert, err := DecodeBundle(data, password)
	if err != nil {
		return nil, &domanaf.ConfigurationError{CompanyID: companyID, Reason: err.Error(), Err: domanaf.ErrCertificateInvalid}
	}

	if cert.Leaf != nil && time.Now().After(cert.Leaf.NotAfter) {
		f.logger.Warn().
			Str("company_id", companyID).
			Time("not_after", cert.Leaf.NotAfter).
			Msg("certificado e-Factura expirado; ANAF rechazará el handshake")
	}
	f.logger.Debug().Str("company_id", companyID).Str("file", path).Msg("canal mTLS creado")
	return newChannel(companyID, cert, f.rootCAs, f.timeout), nil
}

// ResolveCertificatePath convierte file en ruta absoluta (relativa a certDir) y verifica que exista.
func ResolveCertificatePath(certDir, file string) (string, error) {
	p := file
	if !filepath.IsAbs(p) && certDir != "" {
		p = filepath.Join(certDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolver ruta %q: %w", file, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("archivo %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s es un directorio", abs)
	}
	return abs, nil
}

// LoadCertificateFile lee y decodifica un bundle desde disco (herramientas de diagnóstico).
func LoadCertificateFile(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("leer certificado: %w", err)
	}
	return DecodeBundle(data, password)
}
