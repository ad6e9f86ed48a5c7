package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tlerrors "github.com/mrz1836/trustlink/internal/errors"
)

// TestValidate_NilConfig tests that nil config returns error
func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	err := Validate(nil)
	require.ErrorIs(t, err, tlerrors.ErrConfigNil)
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		sentinel error
		contains string
	}{
		{"relative route path", func(c *Config) { c.Verifier.RoutePath = "error" }, tlerrors.ErrConfigInvalidVerifier, "route_path"},
		{"empty route path", func(c *Config) { c.Verifier.RoutePath = "" }, tlerrors.ErrConfigInvalidVerifier, "route_path"},
		{"protocol-relative route path", func(c *Config) { c.Verifier.RoutePath = "//error" }, tlerrors.ErrConfigInvalidVerifier, "route_path"},
		{"route path with query", func(c *Config) { c.Verifier.RoutePath = "/error?x=1" }, tlerrors.ErrConfigInvalidVerifier, "query"},
		{"empty signature param", func(c *Config) { c.Verifier.SignatureParam = "" }, tlerrors.ErrConfigInvalidVerifier, "signature_param"},
		{"signature param collides", func(c *Config) { c.Verifier.SignatureParam = "title" }, tlerrors.ErrConfigInvalidVerifier, "collides"},
		{"zero verify timeout", func(c *Config) { c.Verifier.Timeout = 0 }, tlerrors.ErrConfigInvalidVerifier, "verifier.timeout"},
		{"negative verify timeout", func(c *Config) { c.Verifier.Timeout = -1 }, tlerrors.ErrConfigInvalidVerifier, "verifier.timeout"},
		{"blank site name", func(c *Config) { c.Site.Name = "  " }, tlerrors.ErrConfigInvalidSite, "site.name"},
		{"unsupported locale", func(c *Config) { c.Site.Locale = "de" }, tlerrors.ErrConfigInvalidSite, "site.locale"},
		{"malformed locale", func(c *Config) { c.Site.Locale = "???" }, tlerrors.ErrConfigInvalidSite, "site.locale"},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, tlerrors.ErrConfigInvalidServer, "server.listen"},
		{"zero header timeout", func(c *Config) { c.Server.ReadHeaderTimeout = 0 }, tlerrors.ErrConfigInvalidServer, "read_header_timeout"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, tlerrors.ErrConfigInvalidServer, "shutdown_timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			require.ErrorIs(t, err, tc.sentinel)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestValidate_AcceptedVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no key", func(c *Config) {}},
		{"custom route", func(c *Config) { c.Verifier.RoutePath = "/oops/error" }},
		{"custom signature param", func(c *Config) { c.Verifier.SignatureParam = "sig" }},
		{"spanish", func(c *Config) { c.Site.Locale = "es" }},
		{"regional english", func(c *Config) { c.Site.Locale = "en-GB" }},
		{"guest header", func(c *Config) { c.Server.GuestHeader = "X-Guest" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.NoError(t, Validate(cfg))
		})
	}
}
