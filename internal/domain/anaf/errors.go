package anaf

import (
	"errors"
	"fmt"
	"strings"
)

// Causas de ConfigurationError.
var (
	ErrCertificateNotConfigured = errors.New("certificado digital no configurado")
	ErrCertificateFileNotFound  = errors.New("archivo de certificado no encontrado")
	ErrCertificateInvalid       = errors.New("certificado digital inválido o contraseña incorrecta")
)

// ErrResponseTooLarge el SPV envió más bytes de los que el cliente acepta leer.
var ErrResponseTooLarge = errors.New("respuesta demasiado grande")

// ConfigurationError certificado ausente o inutilizable. No es reintentable hasta que
// un operador corrija la configuración.
type ConfigurationError struct {
	CompanyID string
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuración e-Factura (empresa %s): %v: %s", e.CompanyID, e.Err, e.Reason)
	}
	return fmt.Sprintf("configuración e-Factura (empresa %s): %v", e.CompanyID, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConnectivityError fallo de transporte (DNS, handshake TLS, reset). Reintentable más tarde.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("anaf: conexión fallida con %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RemoteServiceError respuesta HTTP >= 400 del SPV. Lleva el cuerpo crudo para diagnóstico.
type RemoteServiceError struct {
	StatusCode int
	Body       string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("anaf: HTTP %d: %s", e.StatusCode, truncate(e.Body, 512))
}

// SubmissionRejectedError ANAF rechazó el documento en /upload. Terminal para el intento.
type SubmissionRejectedError struct {
	InvoiceID string
	Errors    []string
	Message   string
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("anaf: factura %s rechazada: %s", e.InvoiceID, e.Message)
}

// IsRetryable informa si err puede reintentarse más tarde sin intervención de un operador.
// Una respuesta demasiado grande volvería a serlo.
func IsRetryable(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr) && !errors.Is(err, ErrResponseTooLarge)
}

// IsConfigurationError informa si err proviene de un certificado ausente o inválido.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
