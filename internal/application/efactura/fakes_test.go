package efactura_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/efactura-api/internal/application/efactura"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf/anaftest"
)

// ── Repositorio de facturas en memoria ────────────────────────────────────────

type write struct {
	Op        string
	InvoiceID string
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
	writes   []write
	listErr  error
	writeErr error
}

func newFakeInvoiceRepo(invs ...*entity.Invoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	for _, inv := range invs {
		r.invoices[inv.ID] = inv
	}
	return r
}

func (r *fakeInvoiceRepo) get(id string) *entity.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.invoices[id]
	return &cp
}

func (r *fakeInvoiceRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByEFacturaUploadID(_ context.Context, companyID, uploadID string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID && inv.EFacturaUploadID == uploadID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) ListPendingEFactura(_ context.Context, companyID string) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID && inv.IsAwaitingEFactura() {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, nil
}

func (r *fakeInvoiceRepo) ListCompaniesWithPendingEFactura(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, inv := range r.invoices {
		if inv.IsAwaitingEFactura() && !seen[inv.CompanyID] {
			seen[inv.CompanyID] = true
			out = append(out, inv.CompanyID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeInvoiceRepo) MarkEFacturaSubmitted(_ context.Context, invoiceID, uploadID string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	inv := r.invoices[invoiceID]
	inv.EFacturaStatus = entity.EFacturaStatusPending
	inv.EFacturaUploadID = uploadID
	inv.EFacturaIndexID = ""
	inv.EFacturaSentAt = &sentAt
	r.writes = append(r.writes, write{"submitted", invoiceID})
	return nil
}

func (r *fakeInvoiceRepo) MarkEFacturaRejected(_ context.Context, invoiceID, document string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	inv := r.invoices[invoiceID]
	inv.EFacturaStatus = entity.EFacturaStatusError
	inv.EFacturaXML = document
	r.writes = append(r.writes, write{"rejected", invoiceID})
	return nil
}

func (r *fakeInvoiceRepo) UpdateEFacturaStatus(_ context.Context, invoiceID, status, downloadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	inv := r.invoices[invoiceID]
	inv.EFacturaStatus = status
	if downloadID != "" {
		inv.EFacturaIndexID = downloadID
	}
	r.writes = append(r.writes, write{"status", invoiceID})
	return nil
}

// ── Repositorio de empresas ───────────────────────────────────────────────────

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCompanyRepo) HasActiveModule(_ context.Context, companyID, _ string) (bool, error) {
	_, ok := r.companies[companyID]
	return ok, nil
}

var errDB = errors.New("db caída")

// ── Entorno ───────────────────────────────────────────────────────────────────

type env struct {
	svc      *efactura.Service
	invoices *fakeInvoiceRepo
	fixture  *anaftest.Fixture
	mu       sync.Mutex
	hits     map[string]int
	queries  []string
}

func (e *env) hit(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[path]
}

// newEnv levanta un SPV falso con mux y un servicio apuntando a él para la empresa c1 (CIF RO123).
func newEnv(t *testing.T, mux map[string]http.HandlerFunc, invs ...*entity.Invoice) *env {
	t.Helper()
	e := &env{invoices: newFakeInvoiceRepo(invs...), hits: map[string]int{}}
	srv, pool := anaftest.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.hits[r.URL.Path]++
		e.queries = append(e.queries, r.URL.RequestURI())
		e.mu.Unlock()
		h, ok := mux[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	e.fixture = anaftest.SetupCompany(t, "c1", "RO123", "parola")
	companies := &fakeCompanyRepo{companies: map[string]*entity.Company{"c1": {ID: "c1", Name: "Demo SRL", CIF: "RO123"}}}
	e.svc = efactura.NewService(
		e.fixture.Factory(pool),
		anaf.NewClient(zerolog.Nop()),
		anaf.NewEndpoints(srv.URL+"/rest"),
		e.invoices,
		companies,
		zerolog.Nop(),
	)
	return e
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func invoice(id, number, status, uploadID string) *entity.Invoice {
	return &entity.Invoice{
		ID:               id,
		CompanyID:        "c1",
		InvoiceNumber:    number,
		EFacturaStatus:   status,
		EFacturaUploadID: uploadID,
	}
}
