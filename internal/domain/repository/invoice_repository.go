package repository

import (
	"context"
	"time"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para el sub-estado e-Factura de Invoice.
// Cada método de escritura es un UPDATE de una sola fila.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByEFacturaUploadID busca por index_incarcare almacenado. Devuelve (nil, nil) si no existe.
	GetByEFacturaUploadID(ctx context.Context, companyID, uploadID string) (*entity.Invoice, error)
	// ListPendingEFactura devuelve las facturas PENDING/PROCESSING con upload id de la empresa.
	ListPendingEFactura(ctx context.Context, companyID string) ([]*entity.Invoice, error)
	// ListCompaniesWithPendingEFactura devuelve los IDs de empresa con facturas por sincronizar.
	ListCompaniesWithPendingEFactura(ctx context.Context) ([]string, error)

	// MarkEFacturaSubmitted: PENDING + upload id + fecha de envío. Limpia el id de descarga
	// anterior y conserva el snapshot XML de un rechazo previo.
	MarkEFacturaSubmitted(ctx context.Context, invoiceID, uploadID string, sentAt time.Time) error
	// MarkEFacturaRejected: ERROR + snapshot del documento enviado.
	MarkEFacturaRejected(ctx context.Context, invoiceID, document string) error
	// UpdateEFacturaStatus persiste el estado mapeado; downloadID vacío conserva el actual.
	UpdateEFacturaStatus(ctx context.Context, invoiceID, status, downloadID string) error
}
