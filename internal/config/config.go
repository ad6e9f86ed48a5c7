// Package config provides layered configuration for trustlink.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (TRUSTLINK_* prefix)
//  3. Project config (.trustlink/config.yaml)
//  4. Global config (~/.trustlink/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/messages, but MUST NOT import internal/trust or internal/cli.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/mrz1836/trustlink/internal/errors"
)

// Config is the root configuration structure for trustlink.
type Config struct {
	// Verifier contains the public key and the signed-link conventions.
	Verifier VerifierConfig `yaml:"verifier" mapstructure:"verifier" json:"verifier"`

	// Site contains display settings for the error page.
	Site SiteConfig `yaml:"site" mapstructure:"site" json:"site"`

	// Server contains settings for the HTTP error page server.
	Server ServerConfig `yaml:"server" mapstructure:"server" json:"server"`
}

// VerifierConfig describes how signed links are checked.
type VerifierConfig struct {
	// PublicKey is PEM (SPKI or PKCS#1) or a bare base64 SPKI body.
	// Takes precedence over PublicKeyFile.
	PublicKey string `yaml:"public_key" mapstructure:"public_key" json:"public_key,omitempty"`

	// PublicKeyFile is a path to a file holding the public key.
	PublicKeyFile string `yaml:"public_key_file" mapstructure:"public_key_file" json:"public_key_file,omitempty"`

	// RoutePath is the path the signer includes in the canonical message.
	// Default: /error
	RoutePath string `yaml:"route_path" mapstructure:"route_path" json:"route_path"`

	// SignatureParam is the reserved query parameter carrying the signature.
	// Default: s
	SignatureParam string `yaml:"signature_param" mapstructure:"signature_param" json:"signature_param"`

	// Timeout bounds one verification. Default: 5s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" json:"timeout"`
}

// SiteConfig contains display settings.
type SiteConfig struct {
	// Name appears in "Back to {name}" labels. Default: Home
	Name string `yaml:"name" mapstructure:"name" json:"name"`

	// Locale is the fallback language when the request states none. Default: en
	Locale string `yaml:"locale" mapstructure:"locale" json:"locale"`
}

// ServerConfig contains settings for `trustlink serve`.
type ServerConfig struct {
	// Listen is the TCP address to bind. Default: :8080
	Listen string `yaml:"listen" mapstructure:"listen" json:"listen"`

	// ReadHeaderTimeout bounds reading request headers. Default: 5s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout" json:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`

	// GuestHeader names a request header set by an upstream proxy for guest
	// viewers. Empty disables guest detection.
	GuestHeader string `yaml:"guest_header" mapstructure:"guest_header" json:"guest_header,omitempty"`
}

// KeyMaterial returns the configured public key bytes. The inline key wins
// over the key file. Without either it returns errors.ErrKeyNotConfigured.
func (c *VerifierConfig) KeyMaterial() ([]byte, error) {
	if strings.TrimSpace(c.PublicKey) != "" {
		return []byte(c.PublicKey), nil
	}
	if c.PublicKeyFile == "" {
		return nil, errors.ErrKeyNotConfigured
	}
	data, err := os.ReadFile(c.PublicKeyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read verifier.public_key_file %s", c.PublicKeyFile)
	}
	return data, nil
}

// HasKey reports whether any key source is configured.
func (c *VerifierConfig) HasKey() bool {
	return strings.TrimSpace(c.PublicKey) != "" || c.PublicKeyFile != ""
}
