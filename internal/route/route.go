// Package route decides where the error page's back button leads.
//
// The only link value the router ever sees is a returnTo that already passed
// the trust gate, and even then it is used only when it is a same-origin
// relative path. Every other case goes to a locally defined destination.
//
// Import rules:
//   - CAN import: internal/constants, internal/messages, internal/trust, std lib, x/text
//   - MUST NOT import: internal/web, internal/cli
package route

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/messages"
	"github.com/mrz1836/trustlink/internal/trust"
)

// Root is the default destination.
const Root = "/"

// Target is a navigation affordance: a label and where it leads.
type Target struct {
	Label       string `json:"label"`
	Destination string `json:"destination"`
}

// Input is everything the router decides on.
type Input struct {
	Type    constants.ErrorPageType
	IsGuest bool

	// ReturnTo must come from trust.Gate.TrustedFields, never from the raw query.
	ReturnTo string

	SiteName string
	Locale   language.Tag
}

// Resolve returns the back target for in, or nil when the page offers none.
func Resolve(in Input) *Target {
	l := messages.New(in.Locale)
	home := &Target{Label: l.BackToSite(in.SiteName), Destination: Root}
	returnTo, hasReturn := SafeReturnTo(in.ReturnTo)

	//exhaustive:enforce
	switch in.Type {
	case constants.ErrorPagePermalinkNotFound:
		if hasReturn {
			return &Target{Label: l.BackToSite(in.SiteName), Destination: returnTo}
		}
		return home
	case constants.ErrorPageTeamNotFound:
		return home
	case constants.ErrorPageChannelNotFound:
		if in.IsGuest {
			return &Target{Label: l.Back(), Destination: Root}
		}
		if hasReturn {
			return &Target{Label: l.BackToChannel(), Destination: returnTo}
		}
		return home
	case constants.ErrorPageOAuthAccessDenied, constants.ErrorPageOAuthMissingCode:
		return &Target{Label: l.BackToLogin(), Destination: Root}
	case constants.ErrorPageOAuthInvalidParam, constants.ErrorPageOAuthInvalidRedirectURL:
		return nil
	case constants.ErrorPageLocalUsersLoginDisabled,
		constants.ErrorPagePageNotFound,
		constants.ErrorPageMaxFreeUsersReached,
		constants.ErrorPageCloudArchived,
		constants.ErrorPageUnknown:
		return home
	default:
		return home
	}
}

// ForGate resolves the target for a gate. The type comes from Gate.Type and
// returnTo only from the gate's trusted fields.
func ForGate(g *trust.Gate, isGuest bool, siteName string, tag language.Tag) *Target {
	return Resolve(Input{
		Type:     g.Type(),
		IsGuest:  isGuest,
		ReturnTo: g.TrustedFields().ReturnTo,
		SiteName: siteName,
		Locale:   tag,
	})
}

// SafeReturnTo accepts only same-origin relative paths: a single leading
// slash, no scheme or host, no backslash and no control characters.
func SafeReturnTo(returnTo string) (string, bool) {
	if returnTo == "" || returnTo[0] != '/' || strings.HasPrefix(returnTo, "//") {
		return "", false
	}
	if strings.ContainsFunc(returnTo, func(r rune) bool {
		return r == '\\' || r < 0x20 || r == 0x7f
	}) {
		return "", false
	}
	u, err := url.Parse(returnTo)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "", false
	}
	return returnTo, true
}
