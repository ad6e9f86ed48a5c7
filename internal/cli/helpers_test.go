package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/testutil"
)

// isolate points HOME and the trustlink home at one temp dir and the working
// directory at another, so commands see no user configuration. It returns
// the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(constants.HomeEnvVar, filepath.Join(home, constants.TrustlinkHome))
	t.Setenv("TRUSTLINK_VERIFIER_PUBLIC_KEY", "")
	t.Setenv("TRUSTLINK_SITE_NAME", "")
	t.Chdir(work)
	return work
}

// writeKeyFile writes the public half of kp to dir and returns its path.
func writeKeyFile(t *testing.T, dir string, kp *testutil.KeyPair) string {
	t.Helper()
	path := filepath.Join(dir, "signing.pub")
	require.NoError(t, os.WriteFile(path, []byte(kp.PublicPEM), 0o600))
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	CloseLogFile()
	return out.String(), err
}
