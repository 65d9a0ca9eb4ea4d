// Package config loads runtime configuration from the process environment,
// optionally overlaid with a local .env file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultEnvironment  = "development"
	defaultCurrency     = "usd"
	defaultPairingTTL   = 10 * time.Minute
	defaultSessionTTL   = 24 * time.Hour
	defaultGuestMaxAge  = 90 * 24 * time.Hour
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Stripe      StripeConfig
	Auth        AuthConfig
	Pairing     PairingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	DSN string
}

// StripeConfig configures the payment provider adapter.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Currency      string
}

// AuthConfig configures web session verification and the guest cookie.
type AuthConfig struct {
	SessionSecret  string
	SessionTTL     time.Duration
	GuestCookieAge time.Duration
}

// PairingConfig configures the device pairing handshake.
type PairingConfig struct {
	CodeTTL time.Duration
}

// Production reports whether the service runs with production semantics.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment, overlaying values from the
// .env file when present. Values already set in the process environment win.
func Load() (Config, error) {
	lookup := newLookup(defaultEnvFile)

	cfg := Config{
		Environment: stringWithDefault(lookup, "APP_ENV", defaultEnvironment),
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			BaseURL:      stringWithDefault(lookup, "BASE_URL", "http://localhost:8080"),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Database: DatabaseConfig{
			DSN: stringWithDefault(lookup, "DATABASE_DSN", ""),
		},
		Stripe: StripeConfig{
			APIKey:        stringWithDefault(lookup, "STRIPE_API_KEY", ""),
			WebhookSecret: stringWithDefault(lookup, "STRIPE_WEBHOOK_SECRET", ""),
			Currency:      stringWithDefault(lookup, "STRIPE_CURRENCY", defaultCurrency),
		},
		Auth: AuthConfig{
			SessionSecret:  stringWithDefault(lookup, "SESSION_SECRET", ""),
			SessionTTL:     durationWithDefault(lookup, "SESSION_TTL", defaultSessionTTL),
			GuestCookieAge: durationWithDefault(lookup, "GUEST_COOKIE_MAX_AGE", defaultGuestMaxAge),
		},
		Pairing: PairingConfig{
			CodeTTL: durationWithDefault(lookup, "PAIRING_CODE_TTL", defaultPairingTTL),
		},
	}

	var missing []string
	for _, required := range []struct {
		name  string
		value string
	}{
		{"DATABASE_DSN", cfg.Database.DSN},
		{"STRIPE_API_KEY", cfg.Stripe.APIKey},
		{"STRIPE_WEBHOOK_SECRET", cfg.Stripe.WebhookSecret},
		{"SESSION_SECRET", cfg.Auth.SessionSecret},
	} {
		if strings.TrimSpace(required.value) == "" {
			missing = append(missing, required.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required values: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// newLookup builds a lookup that prefers process env over .env file values.
func newLookup(envFile string) lookupFunc {
	fileValues := readEnvFile(envFile)
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}
}

func readEnvFile(path string) map[string]string {
	values := make(map[string]string)
	file, err := os.Open(path)
	if err != nil {
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			values[key] = value
		}
	}
	return values
}

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
