package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2/google"
	oauthjwt "golang.org/x/oauth2/jwt"
)

// ServiceAccount is the subset of a Google service-account key file the export needs
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadServiceAccount reads and checks the key file at path. It fails when the
// path is empty, the file is unreadable or not JSON, a field is missing, or the
// private key is not an RSA PEM key.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: GOOGLE_CREDENTIALS_PATH is not set", ErrCredentials)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %w", ErrCredentials, path, err)
	}
	if strings.TrimSpace(sa.ClientEmail) == "" {
		return nil, fmt.Errorf("%w: client_email is missing", ErrCredentials)
	}
	if strings.TrimSpace(sa.PrivateKey) == "" {
		return nil, fmt.Errorf("%w: private_key is missing", ErrCredentials)
	}
	if _, err := gojwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey)); err != nil {
		return nil, fmt.Errorf("%w: private_key: %w", ErrCredentials, err)
	}

	return &sa, nil
}

// JWTConfig returns the two-legged OAuth2 config for the account
func (sa *ServiceAccount) JWTConfig(scopes ...string) *oauthjwt.Config {
	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	return &oauthjwt.Config{
		Email:      sa.ClientEmail,
		PrivateKey: []byte(sa.PrivateKey),
		Scopes:     scopes,
		TokenURL:   tokenURL,
	}
}
