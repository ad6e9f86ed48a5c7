package config

import (
	"github.com/mrz1836/trustlink/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// No public key is configured by default, so every link is untrusted until
// one is provided.
func DefaultConfig() *Config {
	return &Config{
		Verifier: VerifierConfig{
			RoutePath:      constants.DefaultRoutePath,
			SignatureParam: constants.ParamSignature,
			Timeout:        constants.DefaultVerifyTimeout,
		},
		Site: SiteConfig{
			Name:   constants.DefaultSiteName,
			Locale: constants.DefaultLocale,
		},
		Server: ServerConfig{
			Listen:            constants.DefaultListenAddr,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ShutdownTimeout:   constants.DefaultShutdownTimeout,
		},
	}
}
