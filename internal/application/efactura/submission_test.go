package efactura_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/efactura-api/internal/domain"
	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

const doc = `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"/>`

func TestSubmit_Accepted(t *testing.T) {
	var gotBody, gotCT, gotQuery string
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			gotBody, gotCT, gotQuery = string(b), r.Header.Get("Content-Type"), r.URL.RawQuery
			_, _ = w.Write([]byte(`{"ExecutionStatus":0,"index_incarcare":"123"}`))
		},
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	uploadID, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	require.NoError(t, err)
	assert.Equal(t, "123", uploadID)
	assert.Equal(t, doc, gotBody)
	assert.Equal(t, "text/plain", gotCT)
	assert.Equal(t, "standard=UBL&cif=RO123", gotQuery)

	inv := e.invoices.get("inv-1")
	assert.Equal(t, entity.EFacturaStatusPending, inv.EFacturaStatus)
	assert.Equal(t, "123", inv.EFacturaUploadID)
	assert.NotNil(t, inv.EFacturaSentAt)
	assert.Equal(t, 1, e.invoices.writeCount())
}

func TestSubmit_Rejected(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"ExecutionStatus":1,"Errors":[{"errorMessage":"bad cif"}]}`),
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	var rejected *domanaf.SubmissionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "bad cif", rejected.Message)

	inv := e.invoices.get("inv-1")
	assert.Equal(t, entity.EFacturaStatusError, inv.EFacturaStatus)
	assert.Equal(t, doc, inv.EFacturaXML)
	assert.Equal(t, 1, e.invoices.writeCount())
}

func TestSubmit_RejectedWithoutMessages(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<header xmlns="mfp:anaf:dgti:spv:respUploadFisier:v1" ExecutionStatus="1"/>`))
		},
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	var rejected *domanaf.SubmissionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, domanaf.FallbackRejectedMessage, rejected.Message)
}

func TestSubmit_MultipleErrorsJoined(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"header":{"ExecutionStatus":1,"Errors":[{"errorMessage":"E1"},{"errorMessage":"E2"}]}}`),
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	var rejected *domanaf.SubmissionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "E1; E2", rejected.Message)
}

func TestSubmit_ZeroStatusWithoutIDIsRejection(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"ExecutionStatus":0}`),
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	var rejected *domanaf.SubmissionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, entity.EFacturaStatusError, e.invoices.get("inv-1").EFacturaStatus)
}

func TestSubmit_RemoteErrorWritesNothing(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		},
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	var remote *domanaf.RemoteServiceError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusServiceUnavailable, remote.StatusCode)
	assert.Equal(t, 0, e.invoices.writeCount())
	assert.Equal(t, entity.EFacturaStatusNotSubmitted, e.invoices.get("inv-1").EFacturaStatus)
}

func TestSubmit_WithoutCertificateFailsBeforeNetwork(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"ExecutionStatus":0,"index_incarcare":"1"}`),
	}, &entity.Invoice{ID: "inv-2", CompanyID: "c2", InvoiceNumber: "X-1"})

	_, err := e.svc.Submit(context.Background(), "c2", "inv-2", []byte(doc), "RO999")
	assert.True(t, domanaf.IsConfigurationError(err))
	assert.ErrorIs(t, err, domanaf.ErrCertificateNotConfigured)
	assert.Equal(t, 0, e.hit("/rest/upload"))
	assert.Equal(t, 0, e.invoices.writeCount())
}

func TestSubmit_InvalidInput(t *testing.T) {
	e := newEnv(t, nil, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte("  "), "RO123")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.Submit(context.Background(), "otra", "inv-1", []byte(doc), "RO123")
	assert.ErrorIs(t, err, domain.ErrNotFound, "factura de otra empresa")

	assert.Equal(t, 0, e.hit("/rest/upload"))
}

func TestSubmit_ResubmitKeepsSnapshot(t *testing.T) {
	prev := invoice("inv-1", "INV-001", entity.EFacturaStatusError, "")
	prev.EFacturaXML = "<Invoice>v1</Invoice>"
	prev.EFacturaIndexID = "D-OLD"
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"ExecutionStatus":0,"index_incarcare":"UP-2"}`),
	}, prev)

	_, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	require.NoError(t, err)

	inv := e.invoices.get("inv-1")
	assert.Equal(t, entity.EFacturaStatusPending, inv.EFacturaStatus)
	assert.Equal(t, "<Invoice>v1</Invoice>", inv.EFacturaXML)
	assert.Empty(t, inv.EFacturaIndexID)
}

func TestSubmit_AcceptedButNotPersisted(t *testing.T) {
	e := newEnv(t, map[string]http.HandlerFunc{
		"/rest/upload": jsonHandler(`{"ExecutionStatus":0,"index_incarcare":"UP-3"}`),
	}, invoice("inv-1", "INV-001", entity.EFacturaStatusNotSubmitted, ""))
	e.invoices.writeErr = errDB

	uploadID, err := e.svc.Submit(context.Background(), "c1", "inv-1", []byte(doc), "RO123")
	require.Error(t, err)
	assert.Equal(t, "UP-3", uploadID)
}

func TestResolveTaxID(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	got, err := e.svc.ResolveTaxID(ctx, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "RO123", got)

	got, err = e.svc.ResolveTaxID(ctx, "c1", "456")
	require.NoError(t, err)
	assert.Equal(t, "456", got)

	got, err = e.svc.ResolveTaxID(ctx, "desconocida", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
