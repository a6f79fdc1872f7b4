// Package anaf contiene el vocabulario y las reglas del protocolo e-Factura (SPV ANAF)
// que no dependen del transporte: mapeo de estados, mensajes de error y límites.
package anaf

import (
	"strings"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// Valores de "stare" devueltos por /stareMesaj.
const (
	RemoteStateInProcessing = "in procesare"
	RemoteStateOK           = "ok"
	RemoteStateNOK          = "nok"
	RemoteStateXMLErrors    = "XML cu erori nepreluat"
)

// MessagesPageSize tope fijo de mensajes por página de listaMesajePaginworkaround.
// El SPV no informa un total fiable; una página llena se interpreta como "hay más".
const MessagesPageSize = 500

// DefaultMessagesWindowDays ventana de consulta del buzón cuando el llamador no indica una.
const DefaultMessagesWindowDays = 60

// Mensajes genéricos cuando ANAF no envía detalle.
const (
	FallbackRejectedMessage = "Factura a fost respinsă de ANAF"
	FallbackInvalidMessage  = "Documentul XML nu este valid"
)

// MapRemoteState traduce "stare" al estado interno. Comparación exacta;
// cualquier valor desconocido queda en PENDING.
func MapRemoteState(state string) string {
	switch state {
	case RemoteStateInProcessing:
		return entity.EFacturaStatusProcessing
	case RemoteStateOK:
		return entity.EFacturaStatusValidated
	case RemoteStateNOK, RemoteStateXMLErrors:
		return entity.EFacturaStatusRejected
	default:
		return entity.EFacturaStatusPending
	}
}

// HasMorePages heurística de paginación: true solo si la página vino llena.
func HasMorePages(count int) bool {
	return count == MessagesPageSize
}

// JoinRemoteErrors concatena los mensajes de ANAF; usa fallback si no hay ninguno.
func JoinRemoteErrors(messages []string, fallback string) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			parts = append(parts, m)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}
