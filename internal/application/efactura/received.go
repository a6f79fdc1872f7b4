package efactura

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// ReceivedInvoice factura de proveedor descargada del buzón.
type ReceivedInvoice struct {
	MessageID   string    `json:"message_id"`
	SupplierCIF string    `json:"supplier_cif"` // cif del mensaje
	CreatedAt   time.Time `json:"created_at"`
	InvoiceName string    `json:"invoice_name"`
	DocumentID  string    `json:"document_id"` // cbc:ID
	IssueDate   string    `json:"issue_date"`  // cbc:IssueDate
	InvoiceXML  []byte    `json:"-"`
}

// ReceivedReport resultado de DownloadReceivedInvoices.
type ReceivedReport struct {
	Found      int               `json:"found"` // mensajes FACTURA PRIMITA en la ventana
	Downloaded int               `json:"downloaded"`
	Failed     int               `json:"failed"`
	Invoices   []ReceivedInvoice `json:"invoices"`
	Errors     []string          `json:"errors"` // "<id mensaje>: <mensaje>"
}

// DownloadReceivedInvoices lista el buzón de los últimos days días, se queda con las facturas
// recibidas y abre el recibo de cada una en serie. El fallo de un mensaje queda en Errors y no
// detiene el resto. Solo devuelve error si el listado falla.
func (s *Service) DownloadReceivedInvoices(ctx context.Context, companyID, taxID string, days int) (*ReceivedReport, error) {
	msgs, err := s.GetMessagesList(ctx, companyID, taxID, days)
	if err != nil {
		return nil, err
	}
	report := &ReceivedReport{Invoices: []ReceivedInvoice{}, Errors: []string{}}
	log := s.logger.With().Str("company_id", companyID).Logger()

	for _, m := range msgs {
		if m.Type != entity.InboxMessageTypeReceived {
			continue
		}
		report.Found++
		if ctx.Err() != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: descarga interrumpida: %v", m.ID, ctx.Err()))
			continue
		}
		receipt, err := s.DownloadReceipt(ctx, companyID, m.ID)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", m.ID, err))
			log.Warn().Err(err).Str("message_id", m.ID).Msg("factura recibida no descargada")
			continue
		}
		report.Downloaded++
		report.Invoices = append(report.Invoices, ReceivedInvoice{
			MessageID:   m.ID,
			SupplierCIF: m.TaxID,
			CreatedAt:   m.CreatedAt,
			InvoiceName: receipt.InvoiceName,
			DocumentID:  receipt.DocumentID,
			IssueDate:   receipt.IssueDate,
			InvoiceXML:  receipt.InvoiceXML,
		})
	}
	log.Info().Int("found", report.Found).Int("downloaded", report.Downloaded).Int("failed", report.Failed).Msg("facturas recibidas")
	return report, nil
}
