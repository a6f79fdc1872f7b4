package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/efactura-api/internal/domain"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo lee la identidad de la factura y escribe solo las columnas efactura_*.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, invoice_number,
	efactura_status, efactura_upload_id, efactura_index_id, efactura_sent_at, efactura_xml,
	updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                        entity.Invoice
		uploadID, indexID, xmlSnap *string
	)
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.InvoiceNumber,
		&inv.EFacturaStatus, &uploadID, &indexID, &inv.EFacturaSentAt, &xmlSnap,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.EFacturaUploadID = derefString(uploadID)
	inv.EFacturaIndexID = derefString(indexID)
	inv.EFacturaXML = derefString(xmlSnap)
	return &inv, nil
}

// GetByID obtiene una factura por ID. (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByEFacturaUploadID busca la factura de la empresa con ese index_incarcare.
func (r *InvoiceRepo) GetByEFacturaUploadID(ctx context.Context, companyID, uploadID string) (*entity.Invoice, error) {
	const where = ` FROM invoices WHERE company_id = $1 AND efactura_upload_id = $2 ORDER BY efactura_sent_at DESC NULLS LAST LIMIT 1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+where, companyID, uploadID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by upload id: %w", err)
	}
	return inv, nil
}

// ListPendingEFactura facturas PENDING/PROCESSING con upload id, más antiguas primero.
func (r *InvoiceRepo) ListPendingEFactura(ctx context.Context, companyID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1
		  AND efactura_status IN ($2, $3)
		  AND efactura_upload_id IS NOT NULL AND efactura_upload_id <> ''
		ORDER BY efactura_sent_at ASC NULLS FIRST, invoice_number`
	rows, err := r.q.Query(ctx, query, companyID, entity.EFacturaStatusPending, entity.EFacturaStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("list pending efactura: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// ListCompaniesWithPendingEFactura empresas con al menos una factura por sincronizar.
func (r *InvoiceRepo) ListCompaniesWithPendingEFactura(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT company_id
		FROM invoices
		WHERE efactura_status IN ($1, $2)
		  AND efactura_upload_id IS NOT NULL AND efactura_upload_id <> ''
		ORDER BY company_id`,
		entity.EFacturaStatusPending, entity.EFacturaStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("list companies with pending efactura: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkEFacturaSubmitted PENDING + upload id; limpia el id de descarga y conserva efactura_xml.
func (r *InvoiceRepo) MarkEFacturaSubmitted(ctx context.Context, invoiceID, uploadID string, sentAt time.Time) error {
	return r.exec(ctx, "mark efactura submitted", `
		UPDATE invoices
		SET efactura_status    = $2,
		    efactura_upload_id = $3,
		    efactura_index_id  = NULL,
		    efactura_sent_at   = $4,
		    updated_at         = now()
		WHERE id = $1`,
		invoiceID, entity.EFacturaStatusPending, uploadID, sentAt)
}

// MarkEFacturaRejected ERROR + snapshot del documento enviado.
func (r *InvoiceRepo) MarkEFacturaRejected(ctx context.Context, invoiceID, document string) error {
	return r.exec(ctx, "mark efactura rejected", `
		UPDATE invoices
		SET efactura_status = $2,
		    efactura_xml    = $3,
		    updated_at      = now()
		WHERE id = $1`,
		invoiceID, entity.EFacturaStatusError, document)
}

// UpdateEFacturaStatus estado mapeado; un downloadID vacío no pisa el existente.
func (r *InvoiceRepo) UpdateEFacturaStatus(ctx context.Context, invoiceID, status, downloadID string) error {
	return r.exec(ctx, "update efactura status", `
		UPDATE invoices
		SET efactura_status   = $2,
		    efactura_index_id = COALESCE($3, efactura_index_id),
		    updated_at        = now()
		WHERE id = $1`,
		invoiceID, status, nullIfEmpty(downloadID))
}

func (r *InvoiceRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
