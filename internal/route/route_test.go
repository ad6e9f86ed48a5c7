package route

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/crypto/native"
	"github.com/mrz1836/trustlink/internal/query"
	"github.com/mrz1836/trustlink/internal/testutil"
	"github.com/mrz1836/trustlink/internal/trust"
)

func TestResolve(t *testing.T) {
	const site = "Acme"
	home := &Target{Label: "Back to Acme", Destination: Root}

	tests := []struct {
		name     string
		in       Input
		expected *Target
	}{
		{
			name:     "permalink with returnTo",
			in:       Input{Type: constants.ErrorPagePermalinkNotFound, ReturnTo: "/acme/pl/abc"},
			expected: &Target{Label: "Back to Acme", Destination: "/acme/pl/abc"},
		},
		{
			name:     "permalink without returnTo",
			in:       Input{Type: constants.ErrorPagePermalinkNotFound},
			expected: home,
		},
		{
			name:     "team not found ignores returnTo",
			in:       Input{Type: constants.ErrorPageTeamNotFound, ReturnTo: "/other"},
			expected: home,
		},
		{
			name:     "channel not found for guest",
			in:       Input{Type: constants.ErrorPageChannelNotFound, IsGuest: true, ReturnTo: "/acme/channels/x"},
			expected: &Target{Label: "Back", Destination: Root},
		},
		{
			name:     "channel not found with returnTo",
			in:       Input{Type: constants.ErrorPageChannelNotFound, ReturnTo: "/acme/channels/town-square"},
			expected: &Target{Label: "Back to Town Square", Destination: "/acme/channels/town-square"},
		},
		{
			name:     "channel not found without returnTo",
			in:       Input{Type: constants.ErrorPageChannelNotFound},
			expected: home,
		},
		{
			name:     "oauth access denied",
			in:       Input{Type: constants.ErrorPageOAuthAccessDenied, ReturnTo: "/x"},
			expected: &Target{Label: "Back to Login Page", Destination: Root},
		},
		{
			name:     "oauth missing code",
			in:       Input{Type: constants.ErrorPageOAuthMissingCode},
			expected: &Target{Label: "Back to Login Page", Destination: Root},
		},
		{
			name:     "oauth invalid param",
			in:       Input{Type: constants.ErrorPageOAuthInvalidParam, ReturnTo: "/x"},
			expected: nil,
		},
		{
			name:     "oauth invalid redirect url",
			in:       Input{Type: constants.ErrorPageOAuthInvalidRedirectURL},
			expected: nil,
		},
		{
			name:     "page not found",
			in:       Input{Type: constants.ErrorPagePageNotFound, ReturnTo: "/x"},
			expected: home,
		},
		{
			name:     "unknown type",
			in:       Input{Type: constants.ErrorPageUnknown, ReturnTo: "/x"},
			expected: home,
		},
		{
			name:     "unlisted type value",
			in:       Input{Type: "something_new"},
			expected: home,
		},
		{
			name:     "permalink with absolute returnTo",
			in:       Input{Type: constants.ErrorPagePermalinkNotFound, ReturnTo: "https://evil.example/phish"},
			expected: home,
		},
		{
			name:     "channel with protocol-relative returnTo",
			in:       Input{Type: constants.ErrorPageChannelNotFound, ReturnTo: "//evil.example"},
			expected: home,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.SiteName = site
			tc.in.Locale = language.English
			assert.Equal(t, tc.expected, Resolve(tc.in))
		})
	}
}

func TestResolve_Localized(t *testing.T) {
	got := Resolve(Input{Type: constants.ErrorPageOAuthAccessDenied, Locale: language.Spanish})
	require.NotNil(t, got)
	assert.Equal(t, "Volver a la página de inicio de sesión", got.Label)

	got = Resolve(Input{Type: constants.ErrorPageTeamNotFound, Locale: language.Und})
	require.NotNil(t, got)
	assert.Equal(t, "Back to "+constants.DefaultSiteName, got.Label)
}

func TestSafeReturnTo(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"/", true},
		{"/team/channels/town-square", true},
		{"/team/pl/abc?x=1#frag", true},
		{"", false},
		{"team/channels/x", false},
		{"//evil.example", false},
		{"/\\evil.example", false},
		{"/\t/evil.example", false},
		{"/\n/evil.example", false},
		{"https://evil.example", false},
		{"javascript:alert(1)", false},
		{" /leading-space", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := SafeReturnTo(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.in, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestForGate_UntrustedReturnToIsIgnored(t *testing.T) {
	g := trust.NewGate("/error", query.Parse("type=channel_not_found&returnTo=/other-team/channel"))
	g.Activate(context.Background())
	require.Equal(t, constants.TrustStateUntrusted, g.State())

	got := ForGate(g, false, "Acme", language.English)
	assert.Equal(t, &Target{Label: "Back to Acme", Destination: Root}, got)
}

func TestForGate_UntrustedTypeStillSelectsTarget(t *testing.T) {
	g := trust.NewGate("/error", query.Parse("type=oauth_invalid_param&returnTo=/back"))
	g.Activate(context.Background())
	require.Equal(t, constants.TrustStateUntrusted, g.State())

	assert.Nil(t, ForGate(g, false, "Acme", language.English))
	assert.Nil(t, ForGate(g, true, "Acme", language.English))
}

func TestForGate_TrustedReturnTo(t *testing.T) {
	kp := testutil.NewEd25519Key(t)
	key, err := keys.Import([]byte(kp.PublicPEM))
	require.NoError(t, err)

	params := query.Params{
		{Key: constants.ParamType, Value: "permalink_not_found"},
		{Key: constants.ParamReturnTo, Value: "/acme/pl/1"},
	}
	g := trust.NewGate("/error", query.Parse(kp.SignedQuery(t, "/error", params)),
		trust.WithVerifier(native.New()), trust.WithKey(key))
	g.Activate(context.Background())
	state, err := g.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, constants.TrustStateTrusted, state)

	assert.Equal(t, &Target{Label: "Back to Acme", Destination: "/acme/pl/1"},
		ForGate(g, false, "Acme", language.English))
}
