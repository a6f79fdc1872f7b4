package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/efactura-api/internal/domain"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/domain/repository"
)

var _ repository.CertificateConfigRepository = (*CertificateConfigRepo)(nil)

// CertificateConfigRepo una fila por empresa en certificate_configs.
type CertificateConfigRepo struct {
	q Querier
}

func NewCertificateConfigRepository(q Querier) *CertificateConfigRepo {
	return &CertificateConfigRepo{q: q}
}

// GetByCompanyID devuelve (nil, nil) si la empresa no tiene certificado.
func (r *CertificateConfigRepo) GetByCompanyID(ctx context.Context, companyID string) (*entity.CertificateConfig, error) {
	const query = `
		SELECT id, company_id, certificate_file, certificate_password, created_at, updated_at
		FROM certificate_configs WHERE company_id = $1`
	var c entity.CertificateConfig
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&c.ID, &c.CompanyID, &c.CertificateFile, &c.CertificatePassword, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificate config: %w", err)
	}
	return &c, nil
}

// Upsert inserta o reemplaza la configuración de la empresa. Rellena ID y fechas.
func (r *CertificateConfigRepo) Upsert(ctx context.Context, cfg *entity.CertificateConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	now := time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	const query = `
		INSERT INTO certificate_configs (id, company_id, certificate_file, certificate_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id) DO UPDATE
		SET certificate_file     = EXCLUDED.certificate_file,
		    certificate_password = EXCLUDED.certificate_password,
		    updated_at           = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		cfg.ID, cfg.CompanyID, cfg.CertificateFile, cfg.CertificatePassword, cfg.CreatedAt, cfg.UpdatedAt,
	).Scan(&cfg.ID, &cfg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: certificate config duplicado (%v)", domain.ErrConflict, err)
		}
		return fmt.Errorf("upsert certificate config: %w", err)
	}
	return nil
}
