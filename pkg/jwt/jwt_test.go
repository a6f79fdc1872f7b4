package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("s3cret", "u-1", "c-1", "admin", "auth", time.Hour)
	require.NoError(t, err)

	claims, err := Parse("s3cret", "auth", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParse_Rejects(t *testing.T) {
	tok, err := Generate("s3cret", "u-1", "c-1", "admin", "auth", time.Hour)
	require.NoError(t, err)

	_, err = Parse("otro", "", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse("s3cret", "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	expired, err := Generate("s3cret", "u-1", "c-1", "admin", "", -time.Minute)
	require.NoError(t, err)
	_, err = Parse("s3cret", "", expired)
	assert.Error(t, err, "expirado")

	noCompany, err := Generate("s3cret", "u-1", "", "admin", "", time.Hour)
	require.NoError(t, err)
	_, err = Parse("s3cret", "", noCompany)
	assert.Error(t, err)
}
