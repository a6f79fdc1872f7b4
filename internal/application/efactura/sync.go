package efactura

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncReport resumen de una reconciliación.
type SyncReport struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"` // "<número de factura>: <mensaje>"
}

// SyncPendingInvoices sondea en serie cada factura PENDING/PROCESSING de la empresa.
// El fallo de una factura se registra en el reporte y no detiene el barrido; nunca
// devuelve error, ni siquiera si el listado falla.
func (s *Service) SyncPendingInvoices(ctx context.Context, companyID string) *SyncReport {
	report := &SyncReport{Errors: []string{}}
	log := s.logger.With().Str("company_id", companyID).Logger()

	pending, err := s.invoices.ListPendingEFactura(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Msg("no se pudieron listar facturas pendientes")
		report.Errors = append(report.Errors, fmt.Sprintf("listar pendientes: %v", err))
		return report
	}

	for _, inv := range pending {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("sincronización interrumpida: %v", ctx.Err()))
			break
		}
		if _, err := s.CheckStatus(ctx, companyID, inv.EFacturaUploadID); err != nil {
			label := inv.InvoiceNumber
			if label == "" {
				label = inv.ID
			}
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", label, err))
			log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("sondeo fallido")
			continue
		}
		report.Synced++
	}
	log.Info().Int("synced", report.Synced).Int("failed", report.Failed).Msg("sincronización e-Factura")
	return report
}

// SweepAll reconcilia en serie todas las empresas con facturas pendientes.
func (s *Service) SweepAll(ctx context.Context) map[string]*SyncReport {
	runID := uuid.NewString()
	log := s.logger.With().Str("run_id", runID).Logger()

	companies, err := s.invoices.ListCompaniesWithPendingEFactura(ctx)
	if err != nil {
		log.Error().Err(err).Msg("no se pudieron listar empresas con pendientes")
		return map[string]*SyncReport{}
	}
	out := make(map[string]*SyncReport, len(companies))
	for _, companyID := range companies {
		if ctx.Err() != nil {
			break
		}
		out[companyID] = s.SyncPendingInvoices(ctx, companyID)
	}
	log.Info().Int("companies", len(out)).Msg("barrido e-Factura terminado")
	return out
}

// RunPeriodic ejecuta SweepAll cada interval hasta que ctx se cancele. interval <= 0 no hace nada.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepAll(ctx)
		}
	}
}
