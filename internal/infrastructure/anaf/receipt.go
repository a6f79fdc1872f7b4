package anaf

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// maxReceiptEntry tope de lectura por entrada del ZIP.
var maxReceiptEntry int64 = 32 << 20

// Receipt contenido del ZIP de /descarcare: la factura tal como la registró el SPV
// ({id}.xml) y la firma del Ministerio de Finanzas (semnatura_{id}.xml).
type Receipt struct {
	Entries      []string
	InvoiceName  string
	InvoiceXML   []byte
	SignatureXML []byte
	DocumentID   string // cbc:ID del documento, vacío si no se pudo leer
	IssueDate    string // cbc:IssueDate
}

var (
	// ErrReceiptWithoutInvoice el ZIP no contiene ningún XML de factura.
	ErrReceiptWithoutInvoice = errors.New("recibo ANAF sin XML de factura")
	// ErrReceiptEntryTooLarge una entrada del ZIP supera maxReceiptEntry.
	ErrReceiptEntryTooLarge = errors.New("entrada del recibo demasiado grande")
)

// OpenReceipt abre el ZIP del recibo en memoria.
func OpenReceipt(data []byte) (*Receipt, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: abrir recibo: %w", err)
	}
	r := &Receipt{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		r.Entries = append(r.Entries, f.Name)
		name := strings.ToLower(path.Base(f.Name))
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "semnatura_") {
			r.SignatureXML = content
			continue
		}
		if r.InvoiceXML == nil {
			r.InvoiceName = f.Name
			r.InvoiceXML = content
		}
	}
	if r.InvoiceXML == nil {
		return nil, ErrReceiptWithoutInvoice
	}
	r.DocumentID, r.IssueDate = documentIdentity(r.InvoiceXML)
	return r, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("zip: abrir %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, maxReceiptEntry+1))
	if err != nil {
		return nil, fmt.Errorf("zip: leer %s: %w", f.Name, err)
	}
	if int64(len(b)) > maxReceiptEntry {
		return nil, fmt.Errorf("zip: %s: %w (más de %d bytes)", f.Name, ErrReceiptEntryTooLarge, maxReceiptEntry)
	}
	return b, nil
}

// documentIdentity lee cbc:ID y cbc:IssueDate hijos directos de la raíz (Invoice o CreditNote).
func documentIdentity(xml []byte) (id, issueDate string) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return "", ""
	}
	root := doc.Root()
	if root == nil {
		return "", ""
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "ID":
			if id == "" {
				id = strings.TrimSpace(child.Text())
			}
		case "IssueDate":
			if issueDate == "" {
				issueDate = strings.TrimSpace(child.Text())
			}
		}
	}
	return id, issueDate
}
