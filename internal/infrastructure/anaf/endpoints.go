package anaf

import (
	"net/url"
	"strconv"
	"strings"
)

// ── Rutas REST del SPV ─────────────────────────────────────────────────────────

const (
	pathUpload       = "/upload"
	pathStatus       = "/stareMesaj"
	pathDownload     = "/descarcare"
	pathMessages     = "/listaMesajeFactura"
	pathMessagesPage = "/listaMesajePaginworkaround" // literal del contrato ANAF
	pathValidate     = "/validare/UBL"
	pathConvert      = "/transformare/FCN"
)

// Endpoints construye las URLs del SPV a partir de la URL base del entorno.
type Endpoints struct {
	base string
}

// NewEndpoints recibe la base (https://api.anaf.ro/{test|prod}/FCTEL/rest o un sandbox).
func NewEndpoints(base string) Endpoints {
	return Endpoints{base: strings.TrimRight(base, "/")}
}

func (e Endpoints) Upload(taxID string) string {
	return e.build(pathUpload, "standard", "UBL", "cif", taxID)
}

func (e Endpoints) Status(uploadID string) string {
	return e.build(pathStatus, "id_incarcare", uploadID)
}

func (e Endpoints) Download(downloadID string) string {
	return e.build(pathDownload, "id", downloadID)
}

func (e Endpoints) Messages(taxID string, days int) string {
	return e.build(pathMessages, "zile", strconv.Itoa(days), "cif", taxID)
}

func (e Endpoints) MessagesPage(taxID string, days, page int) string {
	return e.build(pathMessagesPage, "zile", strconv.Itoa(days), "cif", taxID, "pagina", strconv.Itoa(page))
}

func (e Endpoints) Validate() string { return e.base + pathValidate }

func (e Endpoints) Convert() string { return e.base + pathConvert }

// build recibe pares clave/valor y conserva su orden (url.Values.Encode los ordena).
func (e Endpoints) build(path string, kv ...string) string {
	var sb strings.Builder
	sb.WriteString(e.base)
	sb.WriteString(path)
	for i := 0; i+1 < len(kv); i += 2 {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(kv[i])
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv[i+1]))
	}
	return sb.String()
}
