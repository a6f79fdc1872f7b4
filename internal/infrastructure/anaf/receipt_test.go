package anaf_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

func buildZip(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const ublInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2">
  <cbc:CustomizationID>urn:cen.eu:en16931:2017#compliant#urn:efactura.mfinante.ro:CIUS-RO:1.0.1</cbc:CustomizationID>
  <cbc:ID>INV-001</cbc:ID>
  <cbc:IssueDate>2025-01-15</cbc:IssueDate>
  <cac:AccountingSupplierParty><cac:Party><cbc:ID>ignorado</cbc:ID></cac:Party></cac:AccountingSupplierParty>
</Invoice>`

func TestOpenReceipt_FacturaYFirma(t *testing.T) {
	data := buildZip(t, map[string]string{
		"4200001.xml":           ublInvoice,
		"semnatura_4200001.xml": "<Signature/>",
	}, "semnatura_4200001.xml", "4200001.xml")

	r, err := anaf.OpenReceipt(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"semnatura_4200001.xml", "4200001.xml"}, r.Entries)
	assert.Equal(t, "4200001.xml", r.InvoiceName)
	assert.Equal(t, "<Signature/>", string(r.SignatureXML))
	assert.Equal(t, "INV-001", r.DocumentID)
	assert.Equal(t, "2025-01-15", r.IssueDate)
}

func TestOpenReceipt_SinFactura(t *testing.T) {
	data := buildZip(t, map[string]string{"semnatura_1.xml": "<Signature/>"}, "semnatura_1.xml")
	_, err := anaf.OpenReceipt(data)
	assert.ErrorIs(t, err, anaf.ErrReceiptWithoutInvoice)
}

func TestOpenReceipt_NoEsZip(t *testing.T) {
	_, err := anaf.OpenReceipt([]byte(`{"eroare":"id invalid"}`))
	assert.Error(t, err)
}

func TestOpenReceipt_XMLIlegibleSinIdentidad(t *testing.T) {
	data := buildZip(t, map[string]string{"1.xml": "no es xml"}, "1.xml")
	r, err := anaf.OpenReceipt(data)
	require.NoError(t, err)
	assert.Empty(t, r.DocumentID)
	assert.Equal(t, "no es xml", string(r.InvoiceXML))
}

func TestOpenReceipt_EntradaEnElTope(t *testing.T) {
	anaf.SetReadLimits(t, 1<<20, 64)
	xml := "<Invoice>" + strings.Repeat("x", 64-len("<Invoice></Invoice>")) + "</Invoice>"
	require.Len(t, xml, 64)

	r, err := anaf.OpenReceipt(buildZip(t, map[string]string{"1.xml": xml}, "1.xml"))
	require.NoError(t, err)
	assert.Equal(t, xml, string(r.InvoiceXML))
}

func TestOpenReceipt_EntradaDemasiadoGrande(t *testing.T) {
	anaf.SetReadLimits(t, 1<<20, 64)
	xml := "<Invoice>" + strings.Repeat("x", 65-len("<Invoice></Invoice>")) + "</Invoice>"

	_, err := anaf.OpenReceipt(buildZip(t, map[string]string{"1.xml": xml}, "1.xml"))
	assert.ErrorIs(t, err, anaf.ErrReceiptEntryTooLarge)
}
