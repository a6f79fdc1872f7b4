package efactura

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
)

// BatchItem una factura del lote. TaxID vacío = CIF de la empresa.
type BatchItem struct {
	InvoiceID string
	Document  []byte
	TaxID     string
}

// BatchResult resultado por factura. Error vacío = aceptada.
type BatchResult struct {
	InvoiceID string   `json:"invoice_id"`
	UploadID  string   `json:"upload_id,omitempty"`
	Error     string   `json:"error,omitempty"`
	Errors    []string `json:"errors,omitempty"` // mensajes de ANAF si hubo rechazo
}

// BatchReport resumen de SubmitBatch, en el orden de los items.
type BatchReport struct {
	Total    int           `json:"total"`
	Accepted int           `json:"accepted"`
	Failed   int           `json:"failed"`
	Results  []BatchResult `json:"results"`
}

// SubmitBatch envía las facturas en serie con Submit. El fallo de una factura queda en su
// resultado y no detiene el lote. Una factura ya aceptada en el lote no se reenvía.
// Si ctx se cancela, las restantes se marcan como no enviadas.
func (s *Service) SubmitBatch(ctx context.Context, companyID string, items []BatchItem) *BatchReport {
	report := &BatchReport{Total: len(items), Results: make([]BatchResult, 0, len(items))}
	log := s.logger.With().Str("company_id", companyID).Logger()
	seen := make(map[string]bool, len(items))

	for _, it := range items {
		res := BatchResult{InvoiceID: it.InvoiceID}
		switch {
		case ctx.Err() != nil:
			res.Error = fmt.Sprintf("lote interrumpido: %v", ctx.Err())
		case seen[it.InvoiceID]:
			res.Error = "factura repetida en el lote"
		default:
			res.UploadID, res.Errors, res.Error = s.submitItem(ctx, companyID, it)
			if res.UploadID != "" {
				seen[it.InvoiceID] = true
			}
		}
		if res.Error != "" {
			report.Failed++
			log.Warn().Str("invoice_id", it.InvoiceID).Str("reason", res.Error).Msg("factura del lote no enviada")
		} else {
			report.Accepted++
		}
		report.Results = append(report.Results, res)
	}
	log.Info().Int("total", report.Total).Int("accepted", report.Accepted).Int("failed", report.Failed).Msg("lote e-Factura")
	return report
}

func (s *Service) submitItem(ctx context.Context, companyID string, it BatchItem) (uploadID string, remote []string, msg string) {
	taxID, err := s.ResolveTaxID(ctx, companyID, strings.TrimSpace(it.TaxID))
	if err != nil {
		return "", nil, err.Error()
	}
	uploadID, err = s.Submit(ctx, companyID, it.InvoiceID, it.Document, taxID)
	if err == nil {
		return uploadID, nil, ""
	}
	var rejected *domanaf.SubmissionRejectedError
	if errors.As(err, &rejected) {
		return "", rejected.Errors, rejected.Message
	}
	// uploadID no vacío: ANAF aceptó pero no se pudo persistir; se devuelve para registrarlo.
	return uploadID, nil, err.Error()
}
