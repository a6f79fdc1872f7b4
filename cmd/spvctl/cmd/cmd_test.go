package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf/anaftest"
	"github.com/jhoicas/efactura-api/pkg/vault"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncryptSecret_ConClave(t *testing.T) {
	out, err := run(t, "encrypt-secret", "parola", "--key", anaftest.VaultKey)
	require.NoError(t, err)

	enc := strings.TrimSpace(out)
	assert.True(t, vault.IsEncrypted(enc))
	assert.Equal(t, "parola", vault.New(anaftest.VaultKey).Decrypt(enc))
}

func TestEncryptSecret_SinClave_Falla(t *testing.T) {
	t.Setenv("EFACTURA_ENCRYPTION_KEY", "")
	_, err := run(t, "encrypt-secret", "parola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EFACTURA_ENCRYPTION_KEY")
}

func TestCheckCert_PEMCifrado(t *testing.T) {
	dir := t.TempDir()
	id := anaftest.NewIdentity(t, "RO123")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "firma.pem"), id.EncryptedPEM(t, "parola"), 0o600))

	out, err := run(t, "check-cert", "firma.pem", "--cert-dir", dir, "--password", "parola")
	require.NoError(t, err)

	var rep certReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Contains(t, rep.Subject, "RO123")
	assert.False(t, rep.Expired)
	assert.Len(t, rep.SHA256, 64)
}

func TestCheckCert_ContrasenaIncorrecta(t *testing.T) {
	dir := t.TempDir()
	id := anaftest.NewIdentity(t, "RO123")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "firma.pem"), id.EncryptedPEM(t, "parola"), 0o600))

	_, err := run(t, "check-cert", filepath.Join(dir, "firma.pem"), "-p", "gresit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contraseña")
}

func TestCheckCert_ArchivoInexistente(t *testing.T) {
	_, err := run(t, "check-cert", filepath.Join(t.TempDir(), "nada.p12"))
	require.Error(t, err)
}

func TestSync_RequiereCompanyOAll(t *testing.T) {
	_, err := run(t, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--company o --all")

	_, err = run(t, "sync", "--company", "c1", "--all")
	require.Error(t, err)
}
