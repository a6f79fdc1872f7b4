package efactura

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jhoicas/efactura-api/internal/domain"
	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// Archive recibo de ANAF (ZIP con la factura y la firma del SPV), sin abrir.
type Archive struct {
	DownloadID  string
	ContentType string
	Data        []byte
}

// DownloadResponse descarga el recibo de /descarcare.
func (s *Service) DownloadResponse(ctx context.Context, companyID, downloadID string) (*Archive, error) {
	if downloadID == "" {
		return nil, fmt.Errorf("%w: id de descarga vacío", domain.ErrInvalidInput)
	}
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method: http.MethodGet,
		URL:    s.endpoints.Download(downloadID),
	})
	if err != nil {
		return nil, fmt.Errorf("efactura: descargar %s: %w", downloadID, err)
	}
	return &Archive{
		DownloadID:  downloadID,
		ContentType: anaf.ContentTypeZip,
		Data:        resp.Body,
	}, nil
}

// DownloadReceipt descarga el recibo y lo abre: XML de la factura y firma del SPV.
// Si ANAF responde con un cuerpo que no es ZIP (p. ej. {"eroare": ...}) se devuelve
// *anaf.RemoteServiceError con ese cuerpo.
func (s *Service) DownloadReceipt(ctx context.Context, companyID, downloadID string) (*anaf.Receipt, error) {
	archive, err := s.DownloadResponse(ctx, companyID, downloadID)
	if err != nil {
		return nil, err
	}
	receipt, err := anaf.OpenReceipt(archive.Data)
	if errors.Is(err, anaf.ErrReceiptEntryTooLarge) {
		return nil, fmt.Errorf("efactura: abrir recibo %s: %w", downloadID, err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("company_id", companyID).Str("download_id", downloadID).Msg("recibo ANAF ilegible")
		return nil, fmt.Errorf("efactura: abrir recibo %s: %w", downloadID, &domanaf.RemoteServiceError{
			StatusCode: http.StatusOK,
			Body:       string(archive.Data),
		})
	}
	return receipt, nil
}
