package repository

import (
	"context"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// CertificateConfigRepository puerto de persistencia del certificado digital por empresa.
type CertificateConfigRepository interface {
	// GetByCompanyID devuelve (nil, nil) si la empresa no tiene certificado configurado.
	GetByCompanyID(ctx context.Context, companyID string) (*entity.CertificateConfig, error)
	Upsert(ctx context.Context, cfg *entity.CertificateConfig) error
}
