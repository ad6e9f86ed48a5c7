package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/crypto/native"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/logging"
	"github.com/mrz1836/trustlink/internal/query"
	"github.com/mrz1836/trustlink/internal/trust"
)

// VerifyFlags holds flags specific to the verify command.
type VerifyFlags struct {
	keyFlags

	// File reads URLs from a file, one per line. "-" reads stdin.
	File string
	// Concurrency is the number of URLs verified in parallel.
	Concurrency int
}

// VerifyResult is the outcome for one URL.
type VerifyResult struct {
	// URL is the input with the signature redacted.
	URL      string               `json:"url"`
	State    constants.TrustState `json:"state"`
	Reason   string               `json:"reason,omitempty"`
	Type     string               `json:"type,omitempty"`
	Title    string               `json:"title,omitempty"`
	Message  string               `json:"message,omitempty"`
	Service  string               `json:"service,omitempty"`
	ReturnTo string               `json:"return_to,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Trusted reports whether the URL verified.
func (r VerifyResult) Trusted() bool {
	return r.State == constants.TrustStateTrusted
}

// VerifyReport is the JSON output of the verify command.
type VerifyReport struct {
	Key       string         `json:"key"`
	Trusted   int            `json:"trusted"`
	Untrusted int            `json:"untrusted"`
	Results   []VerifyResult `json:"results"`
}

// AddVerifyCommand adds the verify command to the root command.
func AddVerifyCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &VerifyFlags{}
	root.AddCommand(newVerifyCmd(global, flags))
}

func newVerifyCmd(global *GlobalFlags, flags *VerifyFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [url...]",
		Short: "Verify signed error page links",
		Long: `Verify the signature on one or more error page links.

Each URL is checked the way the error page checks it: the signature parameter
is removed, the remaining query is re-encoded in its original order, and the
signature must cover "<path>?<query>" under the configured public key.

Exits 0 when every link is trusted and 3 when any link is not.

Examples:
  trustlink verify 'https://chat.example.com/error?type=team_not_found&s=MEUC...'
  trustlink verify --file links.txt --concurrency 16 -o json
  cat links.txt | trustlink verify --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), cmd, args, global, flags)
		},
		SilenceUsage: true,
	}

	addKeyFlags(cmd, &flags.keyFlags)
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", `read URLs from a file, one per line ("-" for stdin)`)
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", constants.DefaultVerifyConcurrency, "number of URLs verified in parallel")

	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, args []string, global *GlobalFlags, flags *VerifyFlags) error {
	if flags.Concurrency < 1 || flags.Concurrency > constants.MaxVerifyConcurrency {
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument,
			"--concurrency must be between 1 and %d, got %d", constants.MaxVerifyConcurrency, flags.Concurrency))
	}

	urls, err := collectURLs(args, flags.File, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.NewExitCode2Error(errors.ErrNoInput)
	}

	cfg, err := loadConfig(ctx, global, flags.overrides())
	if err != nil {
		return err
	}
	key, err := loadKey(ctx, keys.NewLoader(), &cfg.Verifier)
	if err != nil {
		return err
	}

	results, err := verifyAll(ctx, cfg, key, urls, flags.Concurrency)
	if err != nil {
		return err
	}

	report := VerifyReport{Key: key.String(), Results: results}
	for _, r := range results {
		if r.Trusted() {
			report.Trusted++
		} else {
			report.Untrusted++
		}
	}

	w := cmd.OutOrStdout()
	if global.Output == OutputJSON {
		err = encodeJSONIndented(w, report)
	} else {
		writeVerifyText(w, report)
	}
	if err != nil {
		return err
	}

	if report.Untrusted > 0 {
		return errors.Wrapf(errors.ErrUntrustedLinks, "%d of %d", report.Untrusted, len(results))
	}
	return nil
}

// collectURLs merges positional URLs with those read from file.
// Blank lines and lines starting with # are skipped.
func collectURLs(args []string, file string, stdin io.Reader) ([]string, error) {
	urls := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			urls = append(urls, a)
		}
	}
	if file == "" {
		return urls, nil
	}

	var r io.Reader
	if file == "-" {
		r = stdin
	} else {
		f, err := os.Open(file) //nolint:gosec // User-supplied input file
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", file)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read URLs")
	}
	return urls, nil
}

// verifyAll checks urls with at most concurrency gates in flight.
// Results keep input order.
func verifyAll(ctx context.Context, cfg *config.Config, key *keys.Handle, urls []string, concurrency int) ([]VerifyResult, error) {
	results := make([]VerifyResult, len(urls))
	verifier := native.New()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, raw := range urls {
		g.Go(func() error {
			res, err := verifyOne(gctx, cfg, verifier, key, raw)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// verifyOne runs a single URL through a trust gate. An unparseable URL is
// reported as untrusted rather than failing the batch.
func verifyOne(ctx context.Context, cfg *config.Config, verifier *native.Verifier, key *keys.Handle, raw string) (VerifyResult, error) {
	res := VerifyResult{URL: logging.FilterSensitiveValue(raw)}

	u, err := url.Parse(raw)
	if err != nil {
		res.State = constants.TrustStateUntrusted
		res.Error = "invalid URL"
		return res, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = cfg.Verifier.RoutePath
	}

	gate := trust.NewGate(path, query.Parse(u.RawQuery),
		trust.WithVerifier(verifier),
		trust.WithKey(key),
		trust.WithSignatureParam(cfg.Verifier.SignatureParam),
		trust.WithTimeout(cfg.Verifier.Timeout),
	)
	gate.Activate(ctx)
	state, err := gate.Await(ctx)
	if err != nil {
		return VerifyResult{}, err
	}

	res.State = state
	if transitions := gate.Transitions(); len(transitions) > 0 {
		res.Reason = transitions[len(transitions)-1].Reason
	}
	fields := gate.TrustedFields()
	res.Type = gate.Type().String()
	res.Title = fields.Title
	res.Message = fields.Message
	res.Service = fields.Service
	res.ReturnTo = fields.ReturnTo
	return res, nil
}

// verifyStyles contains styling for verify text output.
type verifyStyles struct {
	trusted   lipgloss.Style
	untrusted lipgloss.Style
	label     lipgloss.Style
	dim       lipgloss.Style
}

func newVerifyStyles() *verifyStyles {
	return &verifyStyles{
		trusted:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF87")),
		untrusted: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func writeVerifyText(w io.Writer, report VerifyReport) {
	styles := newVerifyStyles()

	_, _ = fmt.Fprintln(w, styles.dim.Render("key: "+report.Key))
	for _, r := range report.Results {
		status := styles.trusted.Render("TRUSTED  ")
		if !r.Trusted() {
			status = styles.untrusted.Render("UNTRUSTED")
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", status, logging.StripControl(r.URL))

		detail := r.Reason
		if r.Error != "" {
			detail = r.Error
		}
		printVerifyField(w, styles, "reason", detail)
		printVerifyField(w, styles, "type", r.Type)
		printVerifyField(w, styles, "title", r.Title)
		printVerifyField(w, styles, "message", r.Message)
		printVerifyField(w, styles, "service", r.Service)
		printVerifyField(w, styles, "returnTo", r.ReturnTo)
	}
	_, _ = fmt.Fprintf(w, "\n%d trusted, %d untrusted\n", report.Trusted, report.Untrusted)
}

func printVerifyField(w io.Writer, styles *verifyStyles, name, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "  %s %s\n", styles.label.Render(name+":"), logging.Truncate(logging.StripControl(value)))
}
