package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

// KeyFlags holds flags specific to the key command.
type KeyFlags struct {
	keyFlags
}

// KeyInfo describes an imported public key.
type KeyInfo struct {
	Algorithm   keys.Algorithm `json:"algorithm"`
	Fingerprint string         `json:"fingerprint"`
}

// AddKeyCommand adds the key command to the root command.
func AddKeyCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &KeyFlags{}
	root.AddCommand(newKeyCmd(global, flags))
}

func newKeyCmd(global *GlobalFlags, flags *KeyFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Check the configured public key",
		Long: `Import the configured public key and print its algorithm and fingerprint.

The fingerprint is the SHA-256 of the key's SPKI encoding, so the same key
yields the same fingerprint whether it was configured as PEM or base64.

Examples:
  trustlink key
  trustlink key --key-file ./signing.pub -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKey(cmd.Context(), cmd.OutOrStdout(), global, flags)
		},
		SilenceUsage: true,
	}

	addKeyFlags(cmd, &flags.keyFlags)
	return cmd
}

func runKey(ctx context.Context, w io.Writer, global *GlobalFlags, flags *KeyFlags) error {
	cfg, err := loadConfig(ctx, global, flags.overrides())
	if err != nil {
		return err
	}
	h, err := loadKey(ctx, keys.NewLoader(), &cfg.Verifier)
	if err != nil {
		return err
	}

	info := KeyInfo{Algorithm: h.Algorithm(), Fingerprint: h.Fingerprint()}
	if global.Output == OutputJSON {
		return encodeJSONIndented(w, info)
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	_, _ = fmt.Fprintf(w, "%s %s\n", label.Render("algorithm:  "), info.Algorithm)
	_, _ = fmt.Fprintf(w, "%s %s\n", label.Render("fingerprint:"), info.Fingerprint)
	return nil
}
