package repository

import (
	"context"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// CompanyRepository puerto de lectura de empresas (la escritura vive en otro módulo).
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}
