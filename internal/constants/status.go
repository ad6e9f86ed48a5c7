package constants

// TrustState represents the trust decision of a single error page instance.
// Status values use snake_case for JSON serialization compatibility.
type TrustState string

// Trust state constants. The state machine only moves forward:
//
//	Unverified → Verifying → Trusted | Untrusted
//	Unverified → Untrusted (no signature or no verification capability)
const (
	// TrustStateUnverified is the initial state before the gate is activated.
	TrustStateUnverified TrustState = "unverified"

	// TrustStateVerifying indicates a signature check is in flight.
	TrustStateVerifying TrustState = "verifying"

	// TrustStateTrusted indicates the parameters are covered by a valid signature.
	TrustStateTrusted TrustState = "trusted"

	// TrustStateUntrusted indicates the parameters must not be rendered.
	TrustStateUntrusted TrustState = "untrusted"
)

// String returns the string representation of the TrustState.
func (s TrustState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible from s.
func (s TrustState) IsTerminal() bool {
	return s == TrustStateTrusted || s == TrustStateUntrusted
}

// ErrorPageType identifies which error the page is describing.
// The set is closed: unknown tokens map to ErrorPageUnknown.
type ErrorPageType string

// Error page types as they appear in the "type" query parameter.
const (
	// ErrorPageUnknown is any missing or unrecognized type token.
	ErrorPageUnknown ErrorPageType = ""

	// ErrorPageLocalUsersLoginDisabled indicates email/username login is turned off.
	ErrorPageLocalUsersLoginDisabled ErrorPageType = "local_users_login_disabled"

	// ErrorPageOAuthAccessDenied indicates the user denied the OAuth authorization.
	ErrorPageOAuthAccessDenied ErrorPageType = "oauth_access_denied"

	// ErrorPageOAuthMissingCode indicates the OAuth provider returned no code.
	ErrorPageOAuthMissingCode ErrorPageType = "oauth_missing_code"

	// ErrorPageOAuthInvalidParam indicates an OAuth request carried an invalid parameter.
	ErrorPageOAuthInvalidParam ErrorPageType = "oauth_invalid_param"

	// ErrorPageOAuthInvalidRedirectURL indicates the OAuth redirect URL is not registered.
	ErrorPageOAuthInvalidRedirectURL ErrorPageType = "oauth_invalid_redirect_url"

	// ErrorPagePageNotFound indicates an unknown route.
	ErrorPagePageNotFound ErrorPageType = "page_not_found"

	// ErrorPagePermalinkNotFound indicates a message permalink could not be resolved.
	ErrorPagePermalinkNotFound ErrorPageType = "permalink_not_found"

	// ErrorPageTeamNotFound indicates the team is private or does not exist.
	ErrorPageTeamNotFound ErrorPageType = "team_not_found"

	// ErrorPageChannelNotFound indicates the channel is private or does not exist.
	ErrorPageChannelNotFound ErrorPageType = "channel_not_found"

	// ErrorPageMaxFreeUsersReached indicates the workspace reached its user limit.
	ErrorPageMaxFreeUsersReached ErrorPageType = "max_free_users_reached"

	// ErrorPageCloudArchived indicates the workspace has been archived.
	ErrorPageCloudArchived ErrorPageType = "cloud_archived"
)

// ErrorPageTypes returns every known error page type, excluding ErrorPageUnknown.
func ErrorPageTypes() []ErrorPageType {
	return []ErrorPageType{
		ErrorPageLocalUsersLoginDisabled,
		ErrorPageOAuthAccessDenied,
		ErrorPageOAuthMissingCode,
		ErrorPageOAuthInvalidParam,
		ErrorPageOAuthInvalidRedirectURL,
		ErrorPagePageNotFound,
		ErrorPagePermalinkNotFound,
		ErrorPageTeamNotFound,
		ErrorPageChannelNotFound,
		ErrorPageMaxFreeUsersReached,
		ErrorPageCloudArchived,
	}
}

// ParseErrorPageType maps a query token to a known type.
// Anything outside the closed set becomes ErrorPageUnknown.
func ParseErrorPageType(token string) ErrorPageType {
	for _, t := range ErrorPageTypes() {
		if string(t) == token {
			return t
		}
	}
	return ErrorPageUnknown
}

// String returns the string representation of the ErrorPageType.
func (t ErrorPageType) String() string {
	if t == ErrorPageUnknown {
		return "unknown"
	}
	return string(t)
}
