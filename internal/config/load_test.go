package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tlerrors "github.com/mrz1836/trustlink/internal/errors"
)

// isolate points HOME and the working directory at empty temp dirs and
// returns them.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home, work = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err, "Load should not fail when no config file exists")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(home, ".trustlink", "config.yaml"), `
site:
  name: Global Site
  locale: es
verifier:
  timeout: 2s
`)
	writeFile(t, filepath.Join(work, ".trustlink", "config.yaml"), `
site:
  name: Project Site
`)

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Project Site", cfg.Site.Name)
	assert.Equal(t, "es", cfg.Site.Locale, "unset project keys fall through to global")
	assert.Equal(t, 2*time.Second, cfg.Verifier.Timeout)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".trustlink", "config.yaml"), `
server:
  listen: ":9000"
`)
	t.Setenv("TRUSTLINK_SERVER_LISTEN", "127.0.0.1:7000")
	t.Setenv("TRUSTLINK_VERIFIER_TIMEOUT", "750ms")
	t.Setenv("TRUSTLINK_VERIFIER_PUBLIC_KEY", "inline-key")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Listen)
	assert.Equal(t, 750*time.Millisecond, cfg.Verifier.Timeout)
	assert.Equal(t, "inline-key", cfg.Verifier.PublicKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".trustlink", "config.yaml"), `
verifier:
  route_path: error
`)

	_, err := Load(context.Background())
	require.ErrorIs(t, err, tlerrors.ErrConfigInvalidVerifier)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".trustlink", "config.yaml"), "verifier: [unclosed")

	_, err := Load(context.Background())
	require.Error(t, err)
}

func TestLoadFromPaths(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")

	writeFile(t, global, `
verifier:
  signature_param: sig
  route_path: /oops
`)
	writeFile(t, project, `
verifier:
  route_path: /error
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)
	assert.Equal(t, "sig", cfg.Verifier.SignatureParam)
	assert.Equal(t, "/error", cfg.Verifier.RoutePath)

	t.Run("missing paths are skipped", func(t *testing.T) {
		cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "nope.yaml"), "")
		require.NoError(t, err)
		assert.Equal(t, "s", cfg.Verifier.SignatureParam)
	})
}

func TestLoadWithOverrides(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".trustlink", "config.yaml"), `
verifier:
  public_key: from-project
site:
  name: Project
`)

	t.Run("flags win", func(t *testing.T) {
		overrides := &Config{
			Verifier: VerifierConfig{Timeout: time.Second},
			Site:     SiteConfig{Name: "Flag"},
			Server:   ServerConfig{Listen: ":1234", GuestHeader: "X-Guest"},
		}
		cfg, err := LoadWithOverrides(context.Background(), "", overrides)
		require.NoError(t, err)
		assert.Equal(t, "Flag", cfg.Site.Name)
		assert.Equal(t, time.Second, cfg.Verifier.Timeout)
		assert.Equal(t, ":1234", cfg.Server.Listen)
		assert.Equal(t, "X-Guest", cfg.Server.GuestHeader)
		assert.Equal(t, "from-project", cfg.Verifier.PublicKey)
	})

	t.Run("key file flag replaces inline key", func(t *testing.T) {
		overrides := &Config{Verifier: VerifierConfig{PublicKeyFile: "/tmp/key.pem"}}
		cfg, err := LoadWithOverrides(context.Background(), "", overrides)
		require.NoError(t, err)
		assert.Empty(t, cfg.Verifier.PublicKey)
		assert.Equal(t, "/tmp/key.pem", cfg.Verifier.PublicKeyFile)
	})

	t.Run("explicit config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeFile(t, path, "site:\n  name: Custom\n")

		cfg, err := LoadWithOverrides(context.Background(), path, nil)
		require.NoError(t, err)
		assert.Equal(t, "Custom", cfg.Site.Name)
		assert.Empty(t, cfg.Verifier.PublicKey, "project file is replaced, not merged")
	})

	t.Run("explicit config file must exist", func(t *testing.T) {
		_, err := LoadWithOverrides(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid override", func(t *testing.T) {
		overrides := &Config{Site: SiteConfig{Locale: "de"}}
		_, err := LoadWithOverrides(context.Background(), "", overrides)
		require.ErrorIs(t, err, tlerrors.ErrConfigInvalidSite)
	})
}
