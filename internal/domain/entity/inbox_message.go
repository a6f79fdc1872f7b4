package entity

import "time"

// Tipos de mensaje que devuelve listaMesajeFactura.
const (
	InboxMessageTypeSent     = "FACTURA TRIMISA"
	InboxMessageTypeReceived = "FACTURA PRIMITA"
	InboxMessageTypeErrors   = "ERORI FACTURA"
	InboxMessageTypeBuyer    = "MESAJ CUMPARATOR PRIMIT / MESAJ CUMPARATOR TRANSMIS"
)

// InboxMessage mensaje del buzón SPV. Solo lectura: se consulta, no se persiste.
type InboxMessage struct {
	ID            string    `json:"id"`
	CreationDate  string    `json:"creation_date"` // formato ANAF yyyyMMddHHmm
	CreatedAt     time.Time `json:"created_at"`    // cero si CreationDate no se pudo interpretar
	TaxID         string    `json:"tax_id"`
	CorrelationID string    `json:"correlation_id"` // id_solicitare (= index_incarcare del envío)
	Detail        string    `json:"detail"`
	Type          string    `json:"type"`
}
