package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/webforge/internal/logfields"
)

// Environment variable names read at startup.
const (
	EnvStripeSecretKey   = "STRIPE_SECRET_KEY"
	EnvBackendURL        = "SUPABASE_URL"
	EnvBackendServiceKey = "SUPABASE_SERVICE_KEY"
	MockStripeSecretKey  = "MOCK_KEY"
)

// envFiles are tried in order; variables already set in the process win.
var envFiles = []string{".env", ".env.local"}

// Credentials holds secrets supplied through the process environment.
// Missing values never fail startup; they fall back to clearly marked placeholders.
type Credentials struct {
	StripeSecretKey   string
	BackendURL        string
	BackendServiceKey string
}

// UsingMockPayments reports whether the payment credential is the placeholder.
func (c Credentials) UsingMockPayments() bool {
	return c.StripeSecretKey == MockStripeSecretKey
}

// CredentialsFromEnv reads credentials from the current environment.
func CredentialsFromEnv() Credentials {
	creds := Credentials{
		StripeSecretKey:   os.Getenv(EnvStripeSecretKey),
		BackendURL:        os.Getenv(EnvBackendURL),
		BackendServiceKey: os.Getenv(EnvBackendServiceKey),
	}
	if creds.StripeSecretKey == "" {
		creds.StripeSecretKey = MockStripeSecretKey
	}
	return creds
}

// loadEnvFiles loads the first readable .env file. godotenv.Load never overrides
// variables that are already present.
func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
		return
	}
}
