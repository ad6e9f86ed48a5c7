package constants

// Query parameter names understood on the error route.
const (
	// ParamType selects the error page type. It is never rendered verbatim.
	ParamType = "type"

	// ParamTitle overrides the page title when trusted.
	ParamTitle = "title"

	// ParamMessage overrides the page message when trusted.
	ParamMessage = "message"

	// ParamService names the external service involved (OAuth errors) when trusted.
	ParamService = "service"

	// ParamReturnTo is the in-app path to return to when trusted.
	ParamReturnTo = "returnTo"

	// ParamSignature carries the url-safe base64 signature over the canonical message.
	ParamSignature = "s"
)
