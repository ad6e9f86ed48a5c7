package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/query"
	"github.com/mrz1836/trustlink/internal/testutil"
	"github.com/mrz1836/trustlink/internal/trust"
)

func signedURL(t *testing.T, kp *testutil.KeyPair, params query.Params) string {
	t.Helper()
	return "https://chat.example.com" + constants.DefaultRoutePath + "?" + kp.SignedQuery(t, constants.DefaultRoutePath, params)
}

func permalink(title string) query.Params {
	return query.Params{
		{Key: constants.ParamType, Value: string(constants.ErrorPagePermalinkNotFound)},
		{Key: constants.ParamTitle, Value: title},
		{Key: constants.ParamReturnTo, Value: "/team/pl/abc"},
	}
}

func TestVerify_TrustedLink(t *testing.T) {
	dir := isolate(t)
	kp := testutil.NewECDSAKey(t)
	keyFile := writeKeyFile(t, dir, kp)

	out, err := execute(t, "", "verify", "--key-file", keyFile, signedURL(t, kp, permalink("Gone")))
	require.NoError(t, err)

	assert.Contains(t, out, "TRUSTED")
	assert.NotContains(t, out, "UNTRUSTED")
	assert.Contains(t, out, "Gone")
	assert.Contains(t, out, "/team/pl/abc")
	assert.Contains(t, out, "1 trusted, 0 untrusted")
}

func TestVerify_TamperedLink(t *testing.T) {
	dir := isolate(t)
	kp := testutil.NewECDSAKey(t)
	keyFile := writeKeyFile(t, dir, kp)
	tampered := strings.Replace(signedURL(t, kp, permalink("Gone")), "title=Gone", "title=Phish", 1)

	out, err := execute(t, "", "verify", "--key-file", keyFile, tampered)
	require.ErrorIs(t, err, errors.ErrUntrustedLinks)
	assert.Equal(t, ExitUntrusted, ExitCodeForError(err))

	assert.Contains(t, out, "UNTRUSTED")
	assert.NotContains(t, out, "title:")
	assert.Contains(t, out, "0 trusted, 1 untrusted")
}

func TestVerify_JSONKeepsOrderAndRedacts(t *testing.T) {
	dir := isolate(t)
	kp := testutil.NewEd25519Key(t)
	keyFile := writeKeyFile(t, dir, kp)

	urls := []string{
		signedURL(t, kp, permalink("one")),
		"https://chat.example.com/error?type=team_not_found",
		signedURL(t, kp, permalink("three")),
		"%zz",
	}
	args := append([]string{"verify", "-o", "json", "--concurrency", "2", "--key-file", keyFile}, urls...)

	out, err := execute(t, "", args...)
	require.ErrorIs(t, err, errors.ErrUntrustedLinks)

	var report VerifyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 4)
	assert.Equal(t, 2, report.Trusted)
	assert.Equal(t, 2, report.Untrusted)
	assert.True(t, strings.HasPrefix(report.Key, "ed25519:"))

	assert.Equal(t, "one", report.Results[0].Title)
	assert.Contains(t, report.Results[0].URL, "[REDACTED]")
	assert.Equal(t, constants.TrustStateUntrusted, report.Results[1].State)
	assert.Equal(t, trust.ReasonNoSignature, report.Results[1].Reason)
	assert.Equal(t, "team_not_found", report.Results[1].Type)
	assert.Equal(t, "three", report.Results[2].Title)
	assert.Equal(t, "invalid URL", report.Results[3].Error)
}

func TestVerify_ReadsFileAndStdin(t *testing.T) {
	dir := isolate(t)
	kp := testutil.NewRSAKey(t)
	keyFile := writeKeyFile(t, dir, kp)

	list := "# links\n\n" + signedURL(t, kp, permalink("a")) + "\n" + signedURL(t, kp, permalink("b")) + "\n"
	listFile := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(listFile, []byte(list), 0o600))

	out, err := execute(t, "", "verify", "--key-file", keyFile, "--file", listFile)
	require.NoError(t, err)
	assert.Contains(t, out, "2 trusted, 0 untrusted")

	out, err = execute(t, list, "verify", "--key-file", keyFile, "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "2 trusted, 0 untrusted")
}

func TestVerify_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		code    int
	}{
		{name: "no urls", args: []string{"verify"}, wantErr: errors.ErrNoInput, code: ExitInvalidInput},
		{name: "zero concurrency", args: []string{"verify", "--concurrency", "0", "x"}, wantErr: errors.ErrInvalidArgument, code: ExitInvalidInput},
		{name: "too much concurrency", args: []string{"verify", "--concurrency", "1000", "x"}, wantErr: errors.ErrInvalidArgument, code: ExitInvalidInput},
		{name: "no key", args: []string{"verify", "https://x/error?type=a"}, wantErr: errors.ErrKeyNotConfigured, code: ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)

			_, err := execute(t, "", tc.args...)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.code, ExitCodeForError(err))
		})
	}
}

func TestVerify_KeyFlagsExclusive(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "verify", "--public-key", "a", "--key-file", "b", "x")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestVerify_BadKeyMaterial(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "verify", "--public-key", "not a key", "https://x/error?type=a")
	require.ErrorIs(t, err, errors.ErrKeyImport)
}

func TestCollectURLs(t *testing.T) {
	urls, err := collectURLs([]string{" a ", "", "b"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, urls)

	_, err = collectURLs(nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	require.Error(t, err)
}
