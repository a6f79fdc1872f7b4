package entity

import "time"

// CertificateConfig certificado digital calificado de una empresa para el SPV.
// CertificatePassword se guarda cifrado con pkg/vault ("<ivHex>:<cipherHex>").
type CertificateConfig struct {
	ID                  string
	CompanyID           string
	CertificateFile     string // ruta al bundle .p12/.pfx/.pem (relativa a EFACTURA_CERT_DIR o absoluta)
	CertificatePassword string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
