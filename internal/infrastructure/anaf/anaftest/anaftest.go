// Package anaftest ofrece utilidades para probar código que habla con el SPV: identidades
// de cliente, un servidor HTTPS que exige certificado de cliente y un repositorio en memoria.
package anaftest

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"

	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
	"github.com/jhoicas/efactura-api/pkg/vault"
)

// VaultKey clave hex de 32 bytes para la bóveda en tests.
const VaultKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// ── Repositorio de certificados en memoria ────────────────────────────────────

// CertRepo implementa repository.CertificateConfigRepository en memoria.
type CertRepo struct {
	mu    sync.Mutex
	cfgs  map[string]*entity.CertificateConfig
	err   error
	Calls int
}

func NewCertRepo() *CertRepo {
	return &CertRepo{cfgs: map[string]*entity.CertificateConfig{}}
}

func (r *CertRepo) GetByCompanyID(_ context.Context, companyID string) (*entity.CertificateConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.err != nil {
		return nil, r.err
	}
	cfg, ok := r.cfgs[companyID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (r *CertRepo) Upsert(_ context.Context, cfg *entity.CertificateConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.cfgs[cfg.CompanyID] = &cp
	return nil
}

// Delete elimina la configuración de la empresa.
func (r *CertRepo) Delete(companyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cfgs, companyID)
}

// Fail hace que toda lectura devuelva err.
func (r *CertRepo) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// ── Identidades ───────────────────────────────────────────────────────────────

// Identity certificado autofirmado ECDSA P-256 con su llave.
type Identity struct {
	CertDER []byte
	Key     *ecdsa.PrivateKey
}

// NewIdentity genera una identidad de cliente con el CN indicado.
func NewIdentity(t testing.TB, cn string) Identity {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return Identity{CertDER: der, Key: key}
}

// CertPEM certificado en PEM.
func (id Identity) CertPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: id.CertDER})
}

// KeyPEM llave PKCS#8 sin cifrar.
func (id Identity) KeyPEM(t testing.TB) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(id.Key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// PlainPEM llave sin cifrar seguida del certificado.
func (id Identity) PlainPEM(t testing.TB) []byte {
	return append(id.KeyPEM(t), id.CertPEM()...)
}

// EncryptedPEM certificado + ENCRYPTED PRIVATE KEY (PKCS#8 PBES2).
func (id Identity) EncryptedPEM(t testing.TB, password string) []byte {
	t.Helper()
	der, err := pkcs8.MarshalPrivateKey(id.Key, []byte(password), nil)
	require.NoError(t, err)
	return append(id.CertPEM(), pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})...)
}

// ── Servidor mTLS ─────────────────────────────────────────────────────────────

// NewServer servidor HTTPS que exige certificado de cliente, como el SPV. Devuelve
// además el pool con el certificado del servidor para WithRootCAs.
func NewServer(t testing.TB, h http.Handler) (*httptest.Server, *x509.CertPool) {
	t.Helper()
	srv := httptest.NewUnstartedServer(h)
	srv.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	return srv, pool
}

// ── Empresa con certificado ───────────────────────────────────────────────────

// Fixture empresa con bundle cifrado en disco y secreto cifrado en el repositorio.
type Fixture struct {
	Repo     *CertRepo
	Vault    *vault.Vault
	Dir      string
	Identity Identity
}

// SetupCompany guarda <companyID>.pem en un directorio temporal y su configuración.
func SetupCompany(t testing.TB, companyID, cn, password string) *Fixture {
	t.Helper()
	f := &Fixture{Repo: NewCertRepo(), Vault: vault.New(VaultKey), Dir: t.TempDir(), Identity: NewIdentity(t, cn)}
	f.AddCompany(t, companyID, password)
	return f
}

// AddCompany registra otra empresa con la misma identidad.
func (f *Fixture) AddCompany(t testing.TB, companyID, password string) {
	t.Helper()
	file := companyID + ".pem"
	require.NoError(t, os.WriteFile(filepath.Join(f.Dir, file), f.Identity.EncryptedPEM(t, password), 0o600))
	secret, err := f.Vault.Encrypt(password)
	require.NoError(t, err)
	require.NoError(t, f.Repo.Upsert(context.Background(), &entity.CertificateConfig{
		ID:                  "cfg-" + companyID,
		CompanyID:           companyID,
		CertificateFile:     file,
		CertificatePassword: secret,
		UpdatedAt:           time.Now(),
	}))
}

// Factory fábrica de canales que confía en pool.
func (f *Fixture) Factory(pool *x509.CertPool, opts ...anaf.ChannelOption) *anaf.ChannelFactory {
	base := []anaf.ChannelOption{anaf.WithCertDir(f.Dir), anaf.WithRootCAs(pool), anaf.WithTimeout(10 * time.Second)}
	return anaf.NewChannelFactory(f.Repo, f.Vault, append(base, opts...)...)
}
