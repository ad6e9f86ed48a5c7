package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to user-facing messages.
// A slice rather than a map so wrapped errors can be matched with errors.Is().
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrKeyImport,
		info: ErrorInfo{
			Message: "The configured public key could not be imported. Signed links will be treated as untrusted.",
			Action:  "Check verifier.public_key: it must be a PEM or base64 SPKI encoded ECDSA, RSA or Ed25519 public key.",
		},
	},
	{
		err: ErrKeyNotConfigured,
		info: ErrorInfo{
			Message: "No public key is configured.",
			Action:  "Set verifier.public_key or verifier.public_key_file, or TRUSTLINK_VERIFIER_PUBLIC_KEY.",
		},
	},
	{
		err: ErrUnsupportedKeyType,
		info: ErrorInfo{
			Message: "The public key type is not supported.",
			Action:  "Use an ECDSA (P-256/P-384/P-521), RSA or Ed25519 public key.",
		},
	},
	{
		err: ErrGateTornDown,
		info: ErrorInfo{
			Message: "The page was closed before its links could be verified.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is missing.",
		},
	},
	{
		err: ErrConfigInvalidVerifier,
		info: ErrorInfo{
			Message: "Invalid verifier configuration.",
			Action:  "Review the verifier section of your config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidSite,
		info: ErrorInfo{
			Message: "Invalid site configuration.",
			Action:  "Review the site section of your config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidServer,
		info: ErrorInfo{
			Message: "Invalid server configuration.",
			Action:  "Review the server section of your config.yaml.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "Invalid argument.",
		},
	},
	{
		err: ErrNoInput,
		info: ErrorInfo{
			Message: "No URLs to verify.",
			Action:  "Pass one or more URLs as arguments or use --file.",
		},
	},
	{
		err: ErrUntrustedLinks,
		info: ErrorInfo{
			Message: "Some links failed signature verification.",
			Action:  "Check that the links were signed with the private half of the configured key and were not modified.",
		},
	},
	{
		err: ErrLocked,
		info: ErrorInfo{
			Message: "Another trustlink process is writing this file.",
			Action:  "Wait for it to finish and try again.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error, trying a direct
// match first and errors.Is() traversal for wrapped errors second.
// Unknown errors yield their own message.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly message along with a suggested action.
// The action is empty when there is nothing the user can do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
