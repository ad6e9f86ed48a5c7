package trust

import (
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/query"
)

// ErrorContext is the link-supplied content a renderer may show. Every field
// is empty unless the gate settled as trusted; the page type used to select
// local defaults is available from Gate.Type in any state.
type ErrorContext struct {
	Type     constants.ErrorPageType `json:"type"`
	Title    string                  `json:"title,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Service  string                  `json:"service,omitempty"`
	ReturnTo string                  `json:"returnTo,omitempty"`
}

// pageType reads the error page type from the parameters.
func pageType(params query.Params) constants.ErrorPageType {
	return constants.ParseErrorPageType(params.Value(constants.ParamType))
}

// trustedContext copies the display fields out of verified parameters.
// The first occurrence of a repeated key wins.
func trustedContext(params query.Params) ErrorContext {
	return ErrorContext{
		Type:     pageType(params),
		Title:    params.Value(constants.ParamTitle),
		Message:  params.Value(constants.ParamMessage),
		Service:  params.Value(constants.ParamService),
		ReturnTo: params.Value(constants.ParamReturnTo),
	}
}
