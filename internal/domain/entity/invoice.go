package entity

import "time"

// Estados e-Factura (SPV ANAF) de una factura.
const (
	EFacturaStatusNotSubmitted = "NOT_SUBMITTED" // Nunca enviada al SPV
	EFacturaStatusPending      = "PENDING"       // Aceptada por /upload, esperando procesamiento
	EFacturaStatusProcessing   = "PROCESSING"    // ANAF respondió "in procesare"
	EFacturaStatusValidated    = "VALIDATED"     // ANAF respondió "ok"
	EFacturaStatusRejected     = "REJECTED"      // ANAF respondió "nok" o XML con errores
	EFacturaStatusError        = "ERROR"         // Rechazo síncrono en /upload
)

// Invoice cabecera de factura. La tabla pertenece al módulo de facturación;
// este servicio solo lee la identidad y escribe los campos EFactura*.
type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber string

	EFacturaStatus   string
	EFacturaUploadID string     // index_incarcare devuelto por /upload
	EFacturaIndexID  string     // id_descarcare devuelto por /stareMesaj
	EFacturaSentAt   *time.Time // nil si nunca se envió
	EFacturaXML      string     // snapshot del documento rechazado (auditoría / reenvío)

	UpdatedAt time.Time
}

// IsAwaitingEFactura informa si la factura espera resultado asíncrono de ANAF.
func (i *Invoice) IsAwaitingEFactura() bool {
	if i.EFacturaUploadID == "" {
		return false
	}
	return i.EFacturaStatus == EFacturaStatusPending || i.EFacturaStatus == EFacturaStatusProcessing
}
