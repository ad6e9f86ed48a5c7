package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource represents a configuration value with its source.
type ConfigValueWithSource struct {
	Value  any          `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// AnnotatedConfig represents configuration with source annotations.
type AnnotatedConfig struct {
	Verifier map[string]ConfigValueWithSource `json:"verifier" yaml:"verifier"`
	Site     map[string]ConfigValueWithSource `json:"site" yaml:"site"`
	Server   map[string]ConfigValueWithSource `json:"server" yaml:"server"`
}

func newConfigShowCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective trustlink configuration with source annotations.

Shows the current configuration values and indicates where each value comes from:
  - default: Built-in default value
  - global: From ~/.trustlink/config.yaml
  - project: From .trustlink/config.yaml (or --config)
  - env: From TRUSTLINK_* environment variable

An inline public key is summarized rather than printed in full.

Examples:
  trustlink config show            # Display config with sources
  trustlink config show -o json    # Display config in JSON format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), global)
		},
		SilenceUsage: true,
	}
}

func runConfigShow(ctx context.Context, w io.Writer, global *GlobalFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg, err := loadConfig(ctx, global, nil)
	if err != nil {
		return err
	}

	projectPath := config.ProjectConfigPath()
	if global.ConfigFile != "" {
		projectPath = global.ConfigFile
	}
	annotated := buildAnnotatedConfig(cfg, loadGlobalConfigOnly(), loadConfigFile(projectPath))

	if global.Output == OutputJSON {
		return encodeJSONIndented(w, annotated)
	}
	writeAnnotatedConfig(w, annotated, projectPath)
	return nil
}

// buildAnnotatedConfig pairs every effective value with its source.
func buildAnnotatedConfig(cfg *config.Config, globalCfg, projectCfg configValues) *AnnotatedConfig {
	src := func(key string, value any) ConfigValueWithSource {
		return determineSource(key, value, globalCfg, projectCfg)
	}

	return &AnnotatedConfig{
		Verifier: map[string]ConfigValueWithSource{
			"public_key":      src("verifier.public_key", summarizeKey(cfg.Verifier.PublicKey)),
			"public_key_file": src("verifier.public_key_file", cfg.Verifier.PublicKeyFile),
			"route_path":      src("verifier.route_path", cfg.Verifier.RoutePath),
			"signature_param": src("verifier.signature_param", cfg.Verifier.SignatureParam),
			"timeout":         src("verifier.timeout", cfg.Verifier.Timeout.String()),
		},
		Site: map[string]ConfigValueWithSource{
			"name":   src("site.name", cfg.Site.Name),
			"locale": src("site.locale", cfg.Site.Locale),
		},
		Server: map[string]ConfigValueWithSource{
			"listen":              src("server.listen", cfg.Server.Listen),
			"read_header_timeout": src("server.read_header_timeout", cfg.Server.ReadHeaderTimeout.String()),
			"shutdown_timeout":    src("server.shutdown_timeout", cfg.Server.ShutdownTimeout.String()),
			"guest_header":        src("server.guest_header", cfg.Server.GuestHeader),
		},
	}
}

// summarizeKey replaces inline key material with its fingerprint.
func summarizeKey(material string) string {
	if strings.TrimSpace(material) == "" {
		return ""
	}
	h, err := keys.Import([]byte(material))
	if err != nil {
		return fmt.Sprintf("(invalid, %d bytes)", len(material))
	}
	return h.String()
}

// configValues holds the keys a single config file sets, flattened to
// dotted paths such as "verifier.timeout".
type configValues map[string]any

// loadGlobalConfigOnly loads only the global config for source comparison.
func loadGlobalConfigOnly() configValues {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return nil
	}
	return loadConfigFile(path)
}

// loadConfigFile loads a config file into a flattened map. A missing or
// unparseable file yields nil.
func loadConfigFile(path string) configValues {
	data, err := os.ReadFile(path) //nolint:gosec // Config file path
	if err != nil {
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	result := make(configValues)
	flatten("", raw, result)
	return result
}

func flatten(prefix string, in map[string]any, out configValues) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}

// determineSource determines where a configuration value came from.
func determineSource(key string, value any, globalCfg, projectCfg configValues) ConfigValueWithSource {
	envKey := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if envVal := os.Getenv(envKey); envVal != "" {
		return ConfigValueWithSource{Value: value, Source: SourceEnv}
	}
	if _, exists := projectCfg[key]; exists {
		return ConfigValueWithSource{Value: value, Source: SourceProject}
	}
	if _, exists := globalCfg[key]; exists {
		return ConfigValueWithSource{Value: value, Source: SourceGlobal}
	}
	return ConfigValueWithSource{Value: value, Source: SourceDefault}
}

// writeAnnotatedConfig prints the configuration as YAML with source comments.
func writeAnnotatedConfig(w io.Writer, annotated *AnnotatedConfig, projectPath string) {
	styles := newConfigStyles()

	_, _ = fmt.Fprintln(w, styles.header.Render("Effective trustlink Configuration"))
	_, _ = fmt.Fprintln(w, styles.dim.Render(strings.Repeat("─", 50)))
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, styles.dim.Render("Sources: ")+
		styles.sourceEnv.Render("env")+" > "+
		styles.sourcePrj.Render("project")+" > "+
		styles.sourceGbl.Render("global")+" > "+
		styles.sourceDef.Render("default"))
	_, _ = fmt.Fprintln(w)

	sections := []struct {
		name   string
		values map[string]ConfigValueWithSource
		order  []string
	}{
		{"verifier", annotated.Verifier, []string{"public_key", "public_key_file", "route_path", "signature_param", "timeout"}},
		{"site", annotated.Site, []string{"name", "locale"}},
		{"server", annotated.Server, []string{"listen", "read_header_timeout", "shutdown_timeout", "guest_header"}},
	}
	for _, s := range sections {
		_, _ = fmt.Fprintln(w, styles.section.Render(s.name+":"))
		for _, k := range s.order {
			printConfigValue(w, styles, "  "+k, s.values[k])
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, styles.dim.Render("Configuration files:"))
	if globalPath, err := config.GlobalConfigPath(); err == nil {
		printConfigFile(w, styles, "  Global: ", globalPath, styles.sourceGbl)
	}
	printConfigFile(w, styles, "  Project: ", projectPath, styles.sourcePrj)
}

func printConfigFile(w io.Writer, styles *configStyles, label, path string, found lipgloss.Style) {
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintln(w, styles.dim.Render(label)+styles.dim.Render(path+" (not found)"))
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	_, _ = fmt.Fprintln(w, styles.dim.Render(label)+found.Render(path))
}

// printConfigValue prints a configuration value with its source annotation.
func printConfigValue(w io.Writer, styles *configStyles, key string, vs ConfigValueWithSource) {
	_, _ = fmt.Fprintf(w, "%s: %s  %s\n",
		styles.key.Render(key),
		styles.value.Render(formatConfigValue(vs.Value)),
		getSourceStyle(vs.Source, styles).Render("# "+string(vs.Source)))
}

// formatConfigValue converts a configuration value to a displayable string.
func formatConfigValue(value any) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "(not set)"
		}
		return v
	case time.Duration:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// getSourceStyle returns the appropriate style for a config source.
func getSourceStyle(source ConfigSource, styles *configStyles) lipgloss.Style {
	switch source {
	case SourceEnv:
		return styles.sourceEnv
	case SourceProject:
		return styles.sourcePrj
	case SourceGlobal:
		return styles.sourceGbl
	case SourceDefault:
		return styles.sourceDef
	default:
		return styles.sourceDef
	}
}
