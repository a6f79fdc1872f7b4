package efactura

import (
	"context"
	"fmt"
	"net/http"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// StatusResult resultado de un sondeo de /stareMesaj.
type StatusResult struct {
	UploadID    string   `json:"upload_id"`
	RemoteState string   `json:"remote_state"` // "stare" tal cual lo devolvió ANAF
	Status      string   `json:"status"`       // estado interno mapeado
	DownloadID  string   `json:"download_id,omitempty"`
	Message     string   `json:"message,omitempty"` // errores concatenados cuando Status es REJECTED
	Errors      []string `json:"errors,omitempty"`
	InvoiceID   string   `json:"invoice_id,omitempty"`
	Matched     bool     `json:"matched"` // hubo factura con ese upload id y se actualizó
}

// CheckStatus consulta el estado de una carga y actualiza la factura que tenga ese upload id.
// Si ninguna factura de la empresa lo tiene, devuelve el resultado sin escribir nada.
func (s *Service) CheckStatus(ctx context.Context, companyID, uploadID string) (*StatusResult, error) {
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method: http.MethodGet,
		URL:    s.endpoints.Status(uploadID),
	})
	if err != nil {
		return nil, fmt.Errorf("efactura: estado de %s: %w", uploadID, err)
	}

	h, _ := anaf.ParseHeader(resp)
	res := &StatusResult{
		UploadID:    uploadID,
		RemoteState: h.State,
		Status:      domanaf.MapRemoteState(h.State),
		DownloadID:  h.DownloadID,
		Errors:      h.Errors,
	}
	if res.Status == entity.EFacturaStatusRejected {
		res.Message = domanaf.JoinRemoteErrors(h.Errors, domanaf.FallbackRejectedMessage)
	}

	inv, err := s.invoices.GetByEFacturaUploadID(ctx, companyID, uploadID)
	if err != nil {
		return nil, fmt.Errorf("efactura: buscar factura por upload id: %w", err)
	}
	if inv == nil {
		s.logger.Debug().Str("company_id", companyID).Str("upload_id", uploadID).Msg("estado sin factura asociada")
		return res, nil
	}
	if err := s.invoices.UpdateEFacturaStatus(ctx, inv.ID, res.Status, res.DownloadID); err != nil {
		return nil, fmt.Errorf("efactura: actualizar estado de %s: %w", inv.ID, err)
	}
	res.InvoiceID = inv.ID
	res.Matched = true
	return res, nil
}
