package efactura

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// ValidationResult resultado de /validare/UBL.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateXML valida un documento UBL con el validador de ANAF (no lo envía).
func (s *Service) ValidateXML(ctx context.Context, companyID string, xml []byte) (*ValidationResult, error) {
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method:      http.MethodPost,
		URL:         s.endpoints.Validate(),
		Body:        xml,
		ContentType: anaf.ContentTypeText,
	})
	if err != nil {
		return nil, fmt.Errorf("efactura: validar XML: %w", err)
	}

	h, _ := anaf.ParseHeader(resp)
	if h.Succeeded() {
		return &ValidationResult{Valid: true}, nil
	}
	var msgs []string
	for _, m := range append(append([]string{}, h.Errors...), h.Messages...) {
		if m = strings.TrimSpace(m); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		msgs = []string{domanaf.FallbackInvalidMessage}
	}
	return &ValidationResult{Valid: false, Errors: msgs}, nil
}

// ConvertPDFToXML envía el PDF (base64) a /transformare/FCN y devuelve el cuerpo tal cual.
func (s *Service) ConvertPDFToXML(ctx context.Context, companyID, pdfBase64 string) (string, error) {
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method:      http.MethodPost,
		URL:         s.endpoints.Convert(),
		Body:        []byte(pdfBase64),
		ContentType: anaf.ContentTypeText,
	})
	if err != nil {
		return "", fmt.Errorf("efactura: convertir PDF: %w", err)
	}
	return resp.Text(), nil
}
