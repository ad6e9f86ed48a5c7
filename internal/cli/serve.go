package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/crypto/native"
	"github.com/mrz1836/trustlink/internal/signal"
	"github.com/mrz1836/trustlink/internal/web"
)

// ServeFlags holds flags specific to the serve command.
type ServeFlags struct {
	keyFlags

	// Listen overrides server.listen.
	Listen string
	// SiteName overrides site.name.
	SiteName string
	// Timeout overrides verifier.timeout.
	Timeout time.Duration
}

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &ServeFlags{}
	root.AddCommand(newServeCmd(global, flags))
}

func newServeCmd(global *GlobalFlags, flags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the error page over HTTP",
		Long: `Serve the error route over HTTP until interrupted.

GET <verifier.route_path> renders the error page for the query it receives,
showing server-supplied text only when the link signature verifies.
GET /healthz answers liveness probes.

A missing or unusable public key does not stop the server: every link is
then rendered as untrusted. The key is read and imported once, at startup,
and an import failure is logged once.

Examples:
  trustlink serve --key-file ./signing.pub
  TRUSTLINK_SERVER_LISTEN=127.0.0.1:9000 trustlink serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := signal.NewHandler(cmd.Context())
			defer h.Stop()
			err := runServe(h.Context(), global, flags)
			logStopSignal(GetLogger(), h.Received())
			return err
		},
		SilenceUsage: true,
	}

	addKeyFlags(cmd, &flags.keyFlags)
	cmd.Flags().StringVar(&flags.Listen, "listen", "", "address to listen on (overrides server.listen)")
	cmd.Flags().StringVar(&flags.SiteName, "site-name", "", `site name used in "Back to ..." labels (overrides site.name)`)
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "verification timeout (overrides verifier.timeout)")

	return cmd
}

func runServe(ctx context.Context, global *GlobalFlags, flags *ServeFlags) error {
	overrides := flags.overrides()
	overrides.Server.Listen = flags.Listen
	overrides.Site.Name = flags.SiteName
	overrides.Verifier.Timeout = flags.Timeout

	cfg, err := loadConfig(ctx, global, overrides)
	if err != nil {
		return err
	}

	logger := GetLogger()
	loader := keys.Shared()
	primeKey(ctx, loader, &cfg.Verifier, logger)

	handler := web.NewRouter(cfg, web.Options{
		Verifier: native.New(),
		Keys:     keySource(loader),
		Logger:   logger,
	})

	return web.NewServer(cfg.Server, handler, logger).ListenAndServe(ctx)
}

// logStopSignal records the signal that stopped the server, if any.
func logStopSignal(logger zerolog.Logger, sig os.Signal) {
	if sig == nil {
		return
	}
	logger.Info().Str("signal", sig.String()).Msg("stopped by signal")
}

// primeKey imports the configured key once, before the server accepts
// requests. A missing or unreadable key is logged here and leaves every link
// untrusted; import failures are logged by the loader.
func primeKey(ctx context.Context, loader *keys.Loader, cfg *config.VerifierConfig, logger zerolog.Logger) {
	if !cfg.HasKey() {
		logger.Warn().Msg("no public key configured, every link will be untrusted")
		return
	}
	material, err := cfg.KeyMaterial()
	if err != nil {
		logger.Error().Err(err).Msg("public key unavailable, every link will be untrusted")
		return
	}
	_, _ = loader.Load(logger.WithContext(ctx), material)
}

// keySource hands out the loader's memoized result. It never reads key
// material, so the key file is not consulted after startup.
func keySource(loader *keys.Loader) web.KeySource {
	return func(context.Context) (*keys.Handle, error) {
		return loader.Handle()
	}
}
