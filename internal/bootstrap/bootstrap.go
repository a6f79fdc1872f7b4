// Package bootstrap arma el grafo de dependencias compartido por la API y spvctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/efactura-api/internal/application/efactura"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
	"github.com/jhoicas/efactura-api/internal/infrastructure/postgres"
	"github.com/jhoicas/efactura-api/pkg/config"
	"github.com/jhoicas/efactura-api/pkg/vault"
)

// Deps dependencias construidas a partir de la configuración.
type Deps struct {
	Pool         *pgxpool.Pool
	Invoices     *postgres.InvoiceRepo
	Companies    *postgres.CompanyRepo
	Certificates *postgres.CertificateConfigRepo
	Vault        *vault.Vault
	Channels     anaf.ChannelProvider
	Cache        *anaf.CachedChannelFactory // nil si EFACTURA_CHANNEL_CACHE=false
	Service      *efactura.Service
}

// New abre el pool de PostgreSQL y construye repositorios, canales y servicio.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Deps, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	d := &Deps{
		Pool:         pool,
		Invoices:     postgres.NewInvoiceRepository(pool),
		Companies:    postgres.NewCompanyRepository(pool),
		Certificates: postgres.NewCertificateConfigRepository(pool),
		Vault:        vault.New(cfg.EFactura.EncryptionKey),
	}

	factory := anaf.NewChannelFactory(d.Certificates, d.Vault,
		anaf.WithCertDir(cfg.EFactura.CertDir),
		anaf.WithTimeout(cfg.EFactura.HTTPTimeout),
		anaf.WithLogger(log),
	)
	d.Channels = factory
	if cfg.EFactura.ChannelCache {
		d.Cache = anaf.NewCachedChannelFactory(factory)
		d.Channels = d.Cache
	}

	baseURL := cfg.EFactura.ResolveBaseURL()
	d.Service = efactura.NewService(
		d.Channels,
		anaf.NewClient(log),
		anaf.NewEndpoints(baseURL),
		d.Invoices,
		d.Companies,
		log,
	)
	log.Info().
		Str("efactura_env", cfg.EFactura.Env).
		Str("base_url", baseURL).
		Bool("channel_cache", cfg.EFactura.ChannelCache).
		Bool("vault", d.Vault.Enabled()).
		Msg("servicio e-Factura listo")
	return d, nil
}

// Close libera canales cacheados y el pool.
func (d *Deps) Close() {
	if d.Cache != nil {
		d.Cache.Close()
	}
	d.Pool.Close()
}
