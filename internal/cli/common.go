package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/errors"
)

// keyFlags select the verification key on commands that need one.
type keyFlags struct {
	PublicKey     string
	PublicKeyFile string
}

// addKeyFlags registers --public-key and --key-file on cmd.
func addKeyFlags(cmd *cobra.Command, flags *keyFlags) {
	cmd.Flags().StringVar(&flags.PublicKey, "public-key", "", "public key, PEM or base64 SPKI (overrides verifier.public_key)")
	cmd.Flags().StringVar(&flags.PublicKeyFile, "key-file", "", "path to a public key file (overrides verifier.public_key_file)")
	cmd.MarkFlagsMutuallyExclusive("public-key", "key-file")
}

// overrides returns a config carrying only the key flags.
func (f *keyFlags) overrides() *config.Config {
	return &config.Config{
		Verifier: config.VerifierConfig{
			PublicKey:     f.PublicKey,
			PublicKeyFile: f.PublicKeyFile,
		},
	}
}

// loadConfig loads the effective configuration for a command.
func loadConfig(ctx context.Context, global *GlobalFlags, overrides *config.Config) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(ctx, global.ConfigFile, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// loadKey imports the configured key through loader.
func loadKey(ctx context.Context, loader *keys.Loader, cfg *config.VerifierConfig) (*keys.Handle, error) {
	material, err := cfg.KeyMaterial()
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, material)
}

// encodeJSONIndented writes v to w as indented JSON.
func encodeJSONIndented(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode JSON output")
	}
	return nil
}
