// Package errorpage assembles what an error page shows from a trust gate,
// the back-button router and the local message catalog.
package errorpage

import (
	"golang.org/x/text/language"

	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/messages"
	"github.com/mrz1836/trustlink/internal/route"
	"github.com/mrz1836/trustlink/internal/trust"
)

// View is the render model of one error page.
type View struct {
	ID      string                  `json:"id"`
	Type    constants.ErrorPageType `json:"type"`
	State   constants.TrustState    `json:"state"`
	Trusted bool                    `json:"trusted"`

	// Pending is true while verification is in flight. Title and Message are
	// empty until the gate settles.
	Pending bool `json:"pending"`

	Title   string        `json:"title"`
	Message string        `json:"message"`
	Back    *route.Target `json:"back"`
	Locale  string        `json:"locale"`
}

// Options are the viewer-dependent inputs.
type Options struct {
	IsGuest  bool
	SiteName string
	Locale   language.Tag
}

// Build renders the current state of gate. Trusted text wins over the local
// default only when it is non-empty.
func Build(gate *trust.Gate, opts Options) View {
	l := messages.New(opts.Locale)
	state := gate.State()
	fields := gate.TrustedFields()
	pageType := gate.Type()

	v := View{
		ID:      gate.ID(),
		Type:    pageType,
		State:   state,
		Trusted: state == constants.TrustStateTrusted,
		Pending: !state.IsTerminal(),
		Back:    route.ForGate(gate, opts.IsGuest, opts.SiteName, l.Tag()),
		Locale:  l.Tag().String(),
	}
	if v.Pending {
		return v
	}

	v.Title = fields.Title
	if v.Title == "" {
		v.Title = l.Title(pageType)
	}
	v.Message = fields.Message
	if v.Message == "" {
		v.Message = l.Message(pageType, opts.IsGuest, fields.Service)
	}
	return v
}
