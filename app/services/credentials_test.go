package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func writeJSONFile(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestLoadServiceAccount(t *testing.T) {
	keyPEM := testPrivateKeyPEM(t)
	path := writeJSONFile(t, map[string]string{
		"type":         "service_account",
		"client_email": "sync@project.iam.gserviceaccount.com",
		"private_key":  keyPEM,
	})

	sa, err := LoadServiceAccount(path)
	require.NoError(t, err)
	assert.Equal(t, "sync@project.iam.gserviceaccount.com", sa.ClientEmail)

	cfg := sa.JWTConfig("https://www.googleapis.com/auth/spreadsheets")
	assert.Equal(t, sa.ClientEmail, cfg.Email)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/spreadsheets"}, cfg.Scopes)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.TokenURL)
}

func TestLoadServiceAccountFailures(t *testing.T) {
	keyPEM := testPrivateKeyPEM(t)

	notJSON := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(notJSON, []byte("{"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent.json")},
		{name: "not json", path: notJSON},
		{name: "missing email", path: writeJSONFile(t, map[string]string{"private_key": keyPEM})},
		{name: "missing key", path: writeJSONFile(t, map[string]string{"client_email": "a@b.c"})},
		{name: "invalid pem", path: writeJSONFile(t, map[string]string{"client_email": "a@b.c", "private_key": "not a key"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa, err := LoadServiceAccount(tt.path)
			assert.Nil(t, sa)
			assert.ErrorIs(t, err, ErrCredentials)
		})
	}
}
