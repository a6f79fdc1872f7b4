package anaf_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
)

func TestMapRemoteState(t *testing.T) {
	cases := map[string]string{
		"in procesare":           entity.EFacturaStatusProcessing,
		"ok":                     entity.EFacturaStatusValidated,
		"nok":                    entity.EFacturaStatusRejected,
		"XML cu erori nepreluat": entity.EFacturaStatusRejected,
		"":                       entity.EFacturaStatusPending,
		"OK":                     entity.EFacturaStatusPending,
		" ok":                    entity.EFacturaStatusPending,
		"in prelucrare":          entity.EFacturaStatusPending,
		"desconocido":            entity.EFacturaStatusPending,
	}
	for state, want := range cases {
		assert.Equal(t, want, anaf.MapRemoteState(state), "stare %q", state)
	}
}

func TestHasMorePages_Boundary(t *testing.T) {
	assert.False(t, anaf.HasMorePages(0))
	assert.False(t, anaf.HasMorePages(1))
	assert.False(t, anaf.HasMorePages(499))
	assert.True(t, anaf.HasMorePages(500))
	assert.False(t, anaf.HasMorePages(501))
}

func TestJoinRemoteErrors(t *testing.T) {
	assert.Equal(t, "bad cif; lipsa data", anaf.JoinRemoteErrors([]string{"bad cif", " ", "lipsa data"}, "x"))
	assert.Equal(t, anaf.FallbackRejectedMessage, anaf.JoinRemoteErrors(nil, anaf.FallbackRejectedMessage))
	assert.Equal(t, anaf.FallbackRejectedMessage, anaf.JoinRemoteErrors([]string{"", "  "}, anaf.FallbackRejectedMessage))
}

func TestErrorKinds(t *testing.T) {
	connErr := fmt.Errorf("poll: %w", &anaf.ConnectivityError{URL: "https://x", Err: errors.New("reset")})
	assert.True(t, anaf.IsRetryable(connErr))
	assert.False(t, anaf.IsConfigurationError(connErr))

	cfgErr := &anaf.ConfigurationError{CompanyID: "c1", Err: anaf.ErrCertificateNotConfigured}
	assert.True(t, anaf.IsConfigurationError(cfgErr))
	assert.True(t, errors.Is(cfgErr, anaf.ErrCertificateNotConfigured))
	assert.False(t, anaf.IsRetryable(cfgErr))

	assert.False(t, anaf.IsRetryable(&anaf.RemoteServiceError{StatusCode: 500, Body: "boom"}))

	tooLarge := &anaf.ConnectivityError{URL: "https://x", Err: fmt.Errorf("%w (más de 10 bytes)", anaf.ErrResponseTooLarge)}
	assert.False(t, anaf.IsRetryable(tooLarge))
}
