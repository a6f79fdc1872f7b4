package anaf

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Header envelope normalizado que ANAF devuelve en /upload, /stareMesaj y /validare.
// Puede llegar como JSON (plano o bajo "header") o como XML <header .../>.
type Header struct {
	ExecutionStatus    int
	HasExecutionStatus bool
	UploadID           string // index_incarcare
	State              string // stare
	DownloadID         string // id_descarcare
	Errors             []string
	Messages           []string
}

// Succeeded ExecutionStatus presente y igual a 0.
func (h Header) Succeeded() bool {
	return h.HasExecutionStatus && h.ExecutionStatus == 0
}

// flexString acepta "123", 123 o null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(string(b))
	return nil
}

type jsonErrorItem struct {
	ErrorMessage flexString `json:"errorMessage"`
}

type jsonMessageItem struct {
	Message flexString `json:"message"`
}

type jsonHeader struct {
	ExecutionStatus *flexString       `json:"ExecutionStatus"`
	UploadID        flexString        `json:"index_incarcare"`
	State           flexString        `json:"stare"`
	DownloadID      flexString        `json:"id_descarcare"`
	Errors          []jsonErrorItem   `json:"Errors"`
	Messages        []jsonMessageItem `json:"Messages"`
	Header          *jsonHeader       `json:"header"`
}

// ParseHeader extrae el envelope de la respuesta. ok es false si el cuerpo no es ni JSON
// ni XML con un elemento header reconocible.
func ParseHeader(resp *Response) (Header, bool) {
	if resp == nil {
		return Header{}, false
	}
	if resp.Structured {
		return parseJSONHeader(resp.Body)
	}
	return parseXMLHeader(resp.Body)
}

func parseJSONHeader(body []byte) (Header, bool) {
	var top jsonHeader
	if err := json.Unmarshal(body, &top); err != nil {
		return Header{}, false
	}
	var h Header
	mergeJSON(&h, &top)
	if top.Header != nil {
		mergeJSON(&h, top.Header)
	}
	return h, true
}

// mergeJSON aplica los campos de src sobre h; el header anidado tiene prioridad.
func mergeJSON(h *Header, src *jsonHeader) {
	if src.ExecutionStatus != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(string(*src.ExecutionStatus))); err == nil {
			h.ExecutionStatus = n
			h.HasExecutionStatus = true
		}
	}
	if v := string(src.UploadID); v != "" {
		h.UploadID = v
	}
	if v := string(src.State); v != "" {
		h.State = v
	}
	if v := string(src.DownloadID); v != "" {
		h.DownloadID = v
	}
	for _, e := range src.Errors {
		h.Errors = append(h.Errors, string(e.ErrorMessage))
	}
	for _, m := range src.Messages {
		h.Messages = append(h.Messages, string(m.Message))
	}
}

func parseXMLHeader(body []byte) (Header, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return Header{}, false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(trimmed); err != nil {
		return Header{}, false
	}
	root := doc.Root()
	if root == nil {
		return Header{}, false
	}
	el := root
	if el.Tag != "header" {
		el = root.FindElement(".//header")
		if el == nil {
			return Header{}, false
		}
	}

	var h Header
	if v := el.SelectAttrValue("ExecutionStatus", ""); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			h.ExecutionStatus = n
			h.HasExecutionStatus = true
		}
	}
	h.UploadID = el.SelectAttrValue("index_incarcare", "")
	h.State = el.SelectAttrValue("stare", "")
	h.DownloadID = el.SelectAttrValue("id_descarcare", "")
	for _, e := range el.SelectElements("Errors") {
		h.Errors = append(h.Errors, e.SelectAttrValue("errorMessage", ""))
	}
	for _, m := range el.SelectElements("Messages") {
		h.Messages = append(h.Messages, m.SelectAttrValue("message", ""))
	}
	return h, true
}

// ── Mensajes del buzón ─────────────────────────────────────────────────────────

// MessageItem elemento de "mesaje" en /listaMesajeFactura y la variante paginada.
type MessageItem struct {
	CreationDate  string
	TaxID         string
	CorrelationID string
	Detail        string
	Type          string
	ID            string
}

type jsonMessageList struct {
	ExecutionStatus *flexString `json:"ExecutionStatus"`
	Error           flexString  `json:"eroare"`
	Messages        []struct {
		CreationDate  flexString `json:"data_creare"`
		TaxID         flexString `json:"cif"`
		CorrelationID flexString `json:"id_solicitare"`
		Detail        flexString `json:"detalii"`
		Type          flexString `json:"tip"`
		ID            flexString `json:"id"`
	} `json:"mesaje"`
}

// ParseMessageList devuelve los mensajes del buzón. Con ExecutionStatus distinto de 0,
// un campo "eroare" o un cuerpo no JSON devuelve lista vacía y remoteErr con el motivo.
func ParseMessageList(resp *Response) (items []MessageItem, remoteErr string) {
	if resp == nil || !resp.Structured {
		return nil, ""
	}
	var list jsonMessageList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, ""
	}
	if list.Error != "" {
		return nil, string(list.Error)
	}
	if list.ExecutionStatus != nil && strings.TrimSpace(string(*list.ExecutionStatus)) != "0" {
		return nil, "ExecutionStatus " + string(*list.ExecutionStatus)
	}
	items = make([]MessageItem, 0, len(list.Messages))
	for _, m := range list.Messages {
		items = append(items, MessageItem{
			CreationDate:  string(m.CreationDate),
			TaxID:         string(m.TaxID),
			CorrelationID: string(m.CorrelationID),
			Detail:        string(m.Detail),
			Type:          string(m.Type),
			ID:            string(m.ID),
		})
	}
	return items, ""
}
