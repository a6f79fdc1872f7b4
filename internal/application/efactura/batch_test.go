package efactura_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/efactura-api/internal/application/efactura"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// uploadByDocument acepta cualquier documento salvo los que contienen "RECHAZAR".
func uploadByDocument(seq *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if strings.Contains(string(b), "RECHAZAR") {
			_, _ = w.Write([]byte(`{"ExecutionStatus":1,"Errors":[{"errorMessage":"E-CIUS: lipsa BT-1"}]}`))
			return
		}
		n := seq.Add(1)
		_, _ = w.Write([]byte(fmt.Sprintf(`{"ExecutionStatus":0,"index_incarcare":"UP-%d"}`, n)))
	}
}

func TestSubmitBatch_OneRejected(t *testing.T) {
	var seq atomic.Int32
	var cifs []string
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": func(w http.ResponseWriter, r *http.Request) {
			cifs = append(cifs, r.URL.Query().Get("cif"))
			uploadByDocument(&seq)(w, r)
		},
	},
		invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""),
		invoice("inv-2", "INV-002", entity.EFacturaStatusNotSubmitted, ""),
		invoice("inv-3", "INV-003", entity.EFacturaStatusNotSubmitted, ""),
	)

	report := e.svc.SubmitBatch(context.Background(), "c1", []efactura.BatchItem{
		{InvoiceID: "inv-1", Document: []byte(doc)},
		{InvoiceID: "inv-2", Document: []byte("<Invoice>RECHAZAR</Invoice>")},
		{InvoiceID: "inv-3", Document: []byte(doc), TaxID: "RO999"},
	})

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)

	assert.Equal(t, "UP-1", report.Results[0].UploadID)
	assert.Empty(t, report.Results[0].Error)
	assert.Equal(t, "E-CIUS: lipsa BT-1", report.Results[1].Error)
	assert.Equal(t, []string{"E-CIUS: lipsa BT-1"}, report.Results[1].Errors)
	assert.Equal(t, "UP-2", report.Results[2].UploadID)
	assert.Equal(t, []string{"RO123", "RO123", "RO999"}, cifs)

	assert.Equal(t, entity.EFacturaStatusPending, e.invoices.get("inv-1").EFacturaStatus)
	assert.Equal(t, entity.EFacturaStatusError, e.invoices.get("inv-2").EFacturaStatus)
	assert.Equal(t, entity.EFacturaStatusPending, e.invoices.get("inv-3").EFacturaStatus)
}

func TestSubmitBatch_IsolatesLocalFailures(t *testing.T) {
	var seq atomic.Int32
	e := newEnv(t, map[string]http.HandlerFunc{"/rest/upload": uploadByDocument(&seq)},
		invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""),
	)

	report := e.svc.SubmitBatch(context.Background(), "c1", []efactura.BatchItem{
		{InvoiceID: "no-existe", Document: []byte(doc)},
		{InvoiceID: "inv-1", Document: nil},
		{InvoiceID: "inv-1", Document: []byte(doc)},
		{InvoiceID: "inv-1", Document: []byte(doc)},
	})

	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 3, report.Failed)
	assert.NotEmpty(t, report.Results[0].Error)
	assert.Contains(t, report.Results[1].Error, "documento vacío")
	assert.Equal(t, "UP-1", report.Results[2].UploadID)
	assert.Equal(t, "factura repetida en el lote", report.Results[3].Error)
	assert.Equal(t, 1, e.hit("/rest/upload"), "la repetida no llega a ANAF")
}

func TestSubmitBatch_CancelledContext(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := e.svc.SubmitBatch(ctx, "c1", []efactura.BatchItem{{InvoiceID: "inv-1", Document: []byte(doc)}})
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[0].Error, "interrumpido")
	assert.Equal(t, 0, e.invoices.writeCount())
}
