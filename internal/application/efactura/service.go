// Package efactura orquesta el ciclo de vida e-Factura de una factura frente al SPV de ANAF:
//
//	envío (/upload) → sondeo (/stareMesaj) → descarga del recibo (/descarcare)
//
// además del buzón de mensajes, la validación/conversión remota y la reconciliación
// periódica de facturas pendientes. Cada llamada remota abre su propio canal mTLS.
package efactura

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/efactura-api/internal/domain/repository"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// Service reúne las operaciones e-Factura. No guarda estado mutable entre llamadas.
type Service struct {
	channels  anaf.ChannelProvider
	client    *anaf.Client
	endpoints anaf.Endpoints
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService construye el servicio con sus colaboradores explícitos.
func NewService(
	channels anaf.ChannelProvider,
	client *anaf.Client,
	endpoints anaf.Endpoints,
	invoices repository.InvoiceRepository,
	companies repository.CompanyRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		channels:  channels,
		client:    client,
		endpoints: endpoints,
		invoices:  invoices,
		companies: companies,
		logger:    logger.With().Str("component", "efactura").Logger(),
		now:       time.Now,
	}
}

// call abre un canal para la empresa, ejecuta la petición y libera el canal.
// Sin certificado falla con *anaf.ConfigurationError antes de tocar la red.
func (s *Service) call(ctx context.Context, companyID string, req anaf.Request) (*anaf.Response, error) {
	ch, err := s.channels.CreateChannel(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	return s.client.Execute(ctx, ch, req)
}

// ResolveTaxID devuelve taxID o, si viene vacío, el CIF registrado de la empresa.
func (s *Service) ResolveTaxID(ctx context.Context, companyID, taxID string) (string, error) {
	if taxID != "" {
		return taxID, nil
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("efactura: obtener empresa: %w", err)
	}
	if company == nil || company.CIF == "" {
		return "", nil
	}
	return company.CIF, nil
}
