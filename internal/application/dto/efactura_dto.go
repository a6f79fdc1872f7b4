package dto

import "time"

// SubmitInvoiceRequest body de POST /api/efactura/invoices/:id/submit.
// TaxID vacío = CIF de la empresa.
type SubmitInvoiceRequest struct {
	Document string `json:"document"` // UBL serializado
	TaxID    string `json:"tax_id,omitempty"`
}

// SubmitInvoiceResponse resultado de un envío aceptado.
type SubmitInvoiceResponse struct {
	InvoiceID string `json:"invoice_id"`
	UploadID  string `json:"upload_id"`
	Status    string `json:"status"`
}

// SubmitRejectedResponse envío rechazado de forma síncrona por ANAF.
type SubmitRejectedResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// SubmitBatchItem una factura del lote.
type SubmitBatchItem struct {
	InvoiceID string `json:"invoice_id"`
	Document  string `json:"document"`
	TaxID     string `json:"tax_id,omitempty"`
}

// SubmitBatchRequest body de POST /api/efactura/invoices/submit-batch.
type SubmitBatchRequest struct {
	Items []SubmitBatchItem `json:"items"`
}

// SubmitBatchResult resultado de una factura del lote. Error vacío = aceptada.
type SubmitBatchResult struct {
	InvoiceID string   `json:"invoice_id"`
	UploadID  string   `json:"upload_id,omitempty"`
	Error     string   `json:"error,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// SubmitBatchResponse resumen del lote.
type SubmitBatchResponse struct {
	Total    int                 `json:"total"`
	Accepted int                 `json:"accepted"`
	Failed   int                 `json:"failed"`
	Results  []SubmitBatchResult `json:"results"`
}

// StatusResponse resultado de GET /api/efactura/status/:uploadId.
type StatusResponse struct {
	UploadID    string   `json:"upload_id"`
	RemoteState string   `json:"remote_state"`
	Status      string   `json:"status"`
	DownloadID  string   `json:"download_id,omitempty"`
	Message     string   `json:"message,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	InvoiceID   string   `json:"invoice_id,omitempty"`
	Matched     bool     `json:"matched"`
}

// InboxMessageResponse mensaje del buzón SPV.
type InboxMessageResponse struct {
	ID            string     `json:"id"`
	CreationDate  string     `json:"creation_date"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	TaxID         string     `json:"tax_id"`
	CorrelationID string     `json:"correlation_id"`
	Detail        string     `json:"detail"`
	Type          string     `json:"type"`
}

// MessagesResponse listado (paginado si Page > 0).
type MessagesResponse struct {
	Messages []InboxMessageResponse `json:"messages"`
	Page     int                    `json:"page,omitempty"`
	HasMore  bool                   `json:"has_more"`
}

// ReceivedInvoiceResponse factura de proveedor descargada del buzón. El XML se obtiene con
// GET /api/efactura/download/{message_id}/xml.
type ReceivedInvoiceResponse struct {
	MessageID   string     `json:"message_id"`
	SupplierCIF string     `json:"supplier_cif"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	InvoiceName string     `json:"invoice_name"`
	DocumentID  string     `json:"document_id"`
	IssueDate   string     `json:"issue_date"`
}

// DownloadReceivedResponse resultado de POST /api/efactura/received/download.
type DownloadReceivedResponse struct {
	Found      int                       `json:"found"`
	Downloaded int                       `json:"downloaded"`
	Failed     int                       `json:"failed"`
	Invoices   []ReceivedInvoiceResponse `json:"invoices"`
	Errors     []string                  `json:"errors"`
}

// ValidateRequest body de POST /api/efactura/validate.
type ValidateRequest struct {
	XML string `json:"xml"`
}

// ValidateResponse resultado del validador de ANAF.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ConvertRequest body de POST /api/efactura/convert.
type ConvertRequest struct {
	PDFBase64 string `json:"pdf_base64"`
}

// ConvertResponse documento devuelto por /transformare/FCN.
type ConvertResponse struct {
	Document string `json:"document"`
}

// SyncResponse resumen de la reconciliación.
type SyncResponse struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// CertificateRequest body de PUT /api/efactura/certificate. El secreto se guarda cifrado.
type CertificateRequest struct {
	CertificateFile     string `json:"certificate_file"`
	CertificatePassword string `json:"certificate_password"`
}

// CertificateResponse configuración guardada (sin secreto).
type CertificateResponse struct {
	CompanyID       string    `json:"company_id"`
	CertificateFile string    `json:"certificate_file"`
	Subject         string    `json:"subject,omitempty"`
	NotAfter        time.Time `json:"not_after,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
