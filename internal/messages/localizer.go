package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mrz1836/trustlink/internal/constants"
)

// Localizer renders the page's local text in one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the closest supported match of tag.
func New(tag language.Tag) *Localizer {
	matched := MatchTag(tag)
	return &Localizer{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(sharedCatalog())),
	}
}

// Tag returns the language the Localizer renders.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Title returns the default title for t.
func (l *Localizer) Title(t constants.ErrorPageType) string {
	e, ok := entries[t]
	if !ok {
		return l.printer.Sprintf(keyDefaultTitle)
	}
	return l.printer.Sprintf(e.title)
}

// Message returns the default message for t. service is interpolated into
// the OAuth messages and replaced by a generic name when empty. Guests get
// their own wording for a missing channel.
func (l *Localizer) Message(t constants.ErrorPageType, isGuest bool, service string) string {
	if t == constants.ErrorPageChannelNotFound && isGuest {
		return l.printer.Sprintf(keyGuestChannel)
	}
	e, ok := entries[t]
	if !ok {
		return l.printer.Sprintf(keyDefaultBody)
	}
	if !takesService(t) {
		return l.printer.Sprintf(e.message)
	}
	if service == "" {
		service = l.printer.Sprintf(keyTheService)
	}
	return l.printer.Sprintf(e.message, service)
}

// BackToSite is the label of a link back to the site root.
func (l *Localizer) BackToSite(siteName string) string {
	if siteName == "" {
		siteName = constants.DefaultSiteName
	}
	return l.printer.Sprintf(keyBackToPlace, siteName)
}

// BackToChannel is the label of a link back to the default channel.
func (l *Localizer) BackToChannel() string {
	return l.printer.Sprintf(keyBackToPlace, l.printer.Sprintf(keyTownSquare))
}

// Back is the plain back label.
func (l *Localizer) Back() string {
	return l.printer.Sprintf(keyBack)
}

// BackToLogin is the label of a link to the login page.
func (l *Localizer) BackToLogin() string {
	return l.printer.Sprintf(keyBackToLogin)
}
