package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/testutil"
)

func TestRunServe_StopsOnCancel(t *testing.T) {
	isolate(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := runServe(ctx, &GlobalFlags{}, &ServeFlags{Listen: "127.0.0.1:0", SiteName: "Acme"})
	require.NoError(t, err)
}

func TestKeySource_UsesKeyLoadedAtStartup(t *testing.T) {
	dir := t.TempDir()
	kp := testutil.NewECDSAKey(t)

	cfg := config.DefaultConfig()
	cfg.Verifier.PublicKeyFile = writeKeyFile(t, dir, kp)

	loader := keys.NewLoader()
	primeKey(context.Background(), loader, &cfg.Verifier, zerolog.Nop())
	require.Equal(t, int64(1), loader.Imports())

	require.NoError(t, os.Remove(cfg.Verifier.PublicKeyFile))

	source := keySource(loader)
	for range 3 {
		h, err := source(context.Background())
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, keys.AlgorithmECDSA, h.Algorithm())
	}
	assert.Equal(t, int64(1), loader.Imports())
}

func TestPrimeKey_Failures(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VerifierConfig
		wantErr error
		imports int64
	}{
		{
			name:    "no key configured",
			wantErr: errors.ErrKeyNotConfigured,
		},
		{
			name:    "unreadable key file",
			cfg:     config.VerifierConfig{PublicKeyFile: filepath.Join(t.TempDir(), "missing.pem")},
			wantErr: errors.ErrKeyNotConfigured,
		},
		{
			name:    "unusable key",
			cfg:     config.VerifierConfig{PublicKey: "not a key"},
			wantErr: errors.ErrKeyImport,
			imports: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loader := keys.NewLoader()
			primeKey(context.Background(), loader, &tc.cfg, zerolog.Nop())

			source := keySource(loader)
			for range 2 {
				h, err := source(context.Background())
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, h)
			}
			assert.Equal(t, tc.imports, loader.Imports())
		})
	}
}

func TestLogStopSignal(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logStopSignal(logger, nil)
	assert.Empty(t, buf.String())

	logStopSignal(logger, syscall.SIGTERM)
	assert.Contains(t, buf.String(), `"signal":"terminated"`)
	assert.Contains(t, buf.String(), "stopped by signal")
}

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd(&GlobalFlags{}, &ServeFlags{})

	for _, name := range []string{"listen", "site-name", "timeout", "public-key", "key-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
