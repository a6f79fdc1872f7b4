package efactura

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/efactura-api/internal/domain"
	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// Submit envía el documento UBL serializado a /upload.
//
// Aceptación síncrona (ExecutionStatus 0 + index_incarcare): la factura pasa a PENDING y se
// devuelve el upload id. Cualquier otra respuesta: la factura pasa a ERROR con el documento
// guardado y se devuelve *anaf.SubmissionRejectedError. Errores de transporte o HTTP no
// escriben nada. No se reintenta: un segundo /upload crea otro índice de carga en ANAF.
func (s *Service) Submit(ctx context.Context, companyID, invoiceID string, document []byte, taxID string) (string, error) {
	if len(bytes.TrimSpace(document)) == 0 {
		return "", fmt.Errorf("%w: documento vacío", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(taxID) == "" {
		return "", fmt.Errorf("%w: CIF obligatorio", domain.ErrInvalidInput)
	}

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return "", fmt.Errorf("efactura: obtener factura: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return "", domain.ErrNotFound
	}

	resp, err := s.call(ctx, companyID, anaf.Request{
		Method:      http.MethodPost,
		URL:         s.endpoints.Upload(taxID),
		Body:        document,
		ContentType: anaf.ContentTypeText,
	})
	if err != nil {
		return "", fmt.Errorf("efactura: enviar factura %s: %w", invoiceID, err)
	}

	h, _ := anaf.ParseHeader(resp)
	if h.Succeeded() && h.UploadID != "" {
		if err := s.invoices.MarkEFacturaSubmitted(ctx, invoiceID, h.UploadID, s.now()); err != nil {
			// ANAF ya aceptó: se devuelve el id para que el llamador pueda registrarlo.
			s.logger.Error().Err(err).Str("invoice_id", invoiceID).Str("upload_id", h.UploadID).
				Msg("envío aceptado por ANAF pero no se pudo persistir")
			return h.UploadID, fmt.Errorf("efactura: persistir envío %s: %w", h.UploadID, err)
		}
		s.logger.Info().Str("invoice_id", invoiceID).Str("upload_id", h.UploadID).Msg("factura enviada al SPV")
		return h.UploadID, nil
	}

	rejected := &domanaf.SubmissionRejectedError{
		InvoiceID: invoiceID,
		Errors:    h.Errors,
		Message:   domanaf.JoinRemoteErrors(h.Errors, domanaf.FallbackRejectedMessage),
	}
	if err := s.invoices.MarkEFacturaRejected(ctx, invoiceID, string(document)); err != nil {
		return "", fmt.Errorf("efactura: persistir rechazo: %w (%v)", err, rejected)
	}
	s.logger.Warn().Str("invoice_id", invoiceID).Str("reason", rejected.Message).Msg("factura rechazada en /upload")
	return "", rejected
}
