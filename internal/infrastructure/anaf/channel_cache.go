package anaf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

// CachedChannelFactory reutiliza el canal de cada empresa mientras su configuración de
// certificado no cambie (archivo, secreto o fecha de actualización).
type CachedChannelFactory struct {
	inner *ChannelFactory

	mu      sync.Mutex
	entries map[string]cachedChannel
}

type cachedChannel struct {
	fingerprint string
	ch          *Channel
}

// NewCachedChannelFactory envuelve una ChannelFactory.
func NewCachedChannelFactory(inner *ChannelFactory) *CachedChannelFactory {
	return &CachedChannelFactory{inner: inner, entries: make(map[string]cachedChannel)}
}

var _ ChannelProvider = (*CachedChannelFactory)(nil)

// CreateChannel devuelve el canal cacheado o construye uno nuevo si la configuración cambió.
// Un archivo de certificado borrado invalida el canal igual que en la fábrica sin caché.
func (f *CachedChannelFactory) CreateChannel(ctx context.Context, companyID string) (*Channel, error) {
	cfg, err := f.inner.loadConfig(ctx, companyID)
	if err != nil {
		f.Invalidate(companyID)
		return nil, err
	}
	if _, err := ResolveCertificatePath(f.inner.certDir, cfg.CertificateFile); err != nil {
		f.Invalidate(companyID)
		return nil, &domanaf.ConfigurationError{CompanyID: companyID, Reason: err.Error(), Err: domanaf.ErrCertificateFileNotFound}
	}
	fp := fingerprint(cfg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[companyID]; ok {
		if e.fingerprint == fp {
			return e.ch, nil
		}
		e.ch.release()
		delete(f.entries, companyID)
	}

	ch, err := f.inner.build(companyID, cfg)
	if err != nil {
		return nil, err
	}
	ch.shared = true
	f.entries[companyID] = cachedChannel{fingerprint: fp, ch: ch}
	return ch, nil
}

// Invalidate descarta el canal de la empresa (p. ej. tras guardar un certificado nuevo).
func (f *CachedChannelFactory) Invalidate(companyID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[companyID]; ok {
		e.ch.release()
		delete(f.entries, companyID)
	}
}

// Close libera todos los canales cacheados.
func (f *CachedChannelFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, e := range f.entries {
		e.ch.release()
		delete(f.entries, id)
	}
}

// fingerprint no guarda el secreto en claro.
func fingerprint(cfg *entity.CertificateConfig) string {
	h := sha256.New()
	h.Write([]byte(cfg.CertificateFile))
	h.Write([]byte{0})
	h.Write([]byte(cfg.CertificatePassword))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(cfg.UpdatedAt.UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
