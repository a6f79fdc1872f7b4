package entity

import "time"

// Company organización/tenant del sistema (enfoque Rumanía).
type Company struct {
	ID        string
	Name      string
	CIF       string // Cod de identificare fiscală, con o sin prefijo RO
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInvoicing = "invoicing"
	ModuleEFactura  = "efactura"
	ModuleSAFT      = "saft"
)
