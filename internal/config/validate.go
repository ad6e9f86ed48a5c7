package config

import (
	"slices"
	"strings"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/messages"
)

// reservedParams are display parameters that cannot double as the signature.
//
//nolint:gochecknoglobals // Read-only lookup table
var reservedParams = []string{
	constants.ParamType,
	constants.ParamTitle,
	constants.ParamMessage,
	constants.ParamService,
	constants.ParamReturnTo,
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - verifier.route_path must be an absolute path
//   - verifier.signature_param must be set and not collide with a display parameter
//   - verifier.timeout must be positive
//   - site.name must not be empty and site.locale must be supported
//   - server.listen must not be empty and server timeouts must be positive
//
// A missing public key is valid: every link is then untrusted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateVerifierConfig(&cfg.Verifier); err != nil {
		return err
	}
	if err := validateSiteConfig(&cfg.Site); err != nil {
		return err
	}
	return validateServerConfig(&cfg.Server)
}

// validateVerifierConfig checks verifier configuration values.
func validateVerifierConfig(cfg *VerifierConfig) error {
	if !strings.HasPrefix(cfg.RoutePath, "/") || strings.HasPrefix(cfg.RoutePath, "//") {
		return errors.Wrapf(errors.ErrConfigInvalidVerifier,
			"verifier.route_path must be an absolute path, got %q", cfg.RoutePath)
	}
	if strings.ContainsAny(cfg.RoutePath, "?#") {
		return errors.Wrapf(errors.ErrConfigInvalidVerifier,
			"verifier.route_path must not contain a query or fragment, got %q", cfg.RoutePath)
	}

	if cfg.SignatureParam == "" {
		return errors.Wrap(errors.ErrConfigInvalidVerifier,
			"verifier.signature_param must not be empty")
	}
	if slices.Contains(reservedParams, cfg.SignatureParam) {
		return errors.Wrapf(errors.ErrConfigInvalidVerifier,
			"verifier.signature_param %q collides with a display parameter", cfg.SignatureParam)
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidVerifier,
			"verifier.timeout must be positive, got %s", cfg.Timeout)
	}
	return nil
}

// validateSiteConfig checks site configuration values.
func validateSiteConfig(cfg *SiteConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.Wrap(errors.ErrConfigInvalidSite, "site.name must not be empty")
	}
	if !messages.IsSupported(cfg.Locale) {
		return errors.Wrapf(errors.ErrConfigInvalidSite,
			"site.locale %q is not a supported language", cfg.Locale)
	}
	return nil
}

// validateServerConfig checks server configuration values.
func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Listen == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.listen must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.read_header_timeout must be positive, got %s", cfg.ReadHeaderTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.shutdown_timeout must be positive, got %s", cfg.ShutdownTimeout)
	}
	return nil
}
