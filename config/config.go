package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-authgate"
)

// Config holds the service configuration read from the environment.
//
// WebhookSecret is optional; a missing secret is reported
// on each webhook delivery rather than at startup.
type Config struct {
	Addr              string   `env:"AUTHGATE_ADDR"            envDefault:":3000"`
	WebhookSecret     string   `env:"WEBHOOK_SECRET"`
	DatabaseURL       string   `env:"DATABASE_URL"             envDefault:"file:authgate.db?cache=shared"`
	Debug             bool     `env:"AUTHGATE_DEBUG"`
	ClerkSecretKey    string   `env:"CLERK_SECRET_KEY"`
	ClerkJWKSURL      string   `env:"CLERK_JWKS_URL"`
	AuthorizedParties []string `env:"CLERK_AUTHORIZED_PARTIES" envSeparator:","`
	SessionLookup     string   `env:"AUTHGATE_SESSION_LOOKUP"  envDefault:"cookie:__session,header:Authorization"`
	PublicRoutes      []string `env:"AUTHGATE_PUBLIC_ROUTES"   envSeparator:","`
}

var _ authgate.Config = Config{}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.AuthorizedParties = compact(cfg.AuthorizedParties)
	cfg.PublicRoutes = compact(cfg.PublicRoutes)
	return cfg, nil
}

func (c Config) GetAddr() string {
	return c.Addr
}

func (c Config) GetWebhookSecret() string {
	return strings.TrimSpace(c.WebhookSecret)
}

func (c Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetClerkSecretKey() string {
	return c.ClerkSecretKey
}

func (c Config) GetClerkJWKSURL() string {
	return c.ClerkJWKSURL
}

func (c Config) GetAuthorizedParties() []string {
	return slices.Clone(c.AuthorizedParties)
}

func (c Config) GetSessionLookup() string {
	return c.SessionLookup
}

// GetPublicRoutes returns the configured public routes or the defaults.
func (c Config) GetPublicRoutes() []string {
	if len(c.PublicRoutes) == 0 {
		return authgate.DefaultPublicRoutes()
	}
	return slices.Clone(c.PublicRoutes)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
