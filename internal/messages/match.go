package messages

import (
	"golang.org/x/text/language"
)

// supported lists the languages with a full translation, default first.
//
//nolint:gochecknoglobals // Read-only language list
var supported = []language.Tag{
	language.English,
	language.Spanish,
}

//nolint:gochecknoglobals // Read-only matcher over supported
var matcher = language.NewMatcher(supported)

// Supported returns the languages messages can render.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// MatchTag returns the supported language closest to tag, or English.
func MatchTag(tag language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// Match picks a supported language from preferences in priority order. Each
// preference may be a single locale or an Accept-Language header value.
// Unparseable preferences are skipped.
func Match(preferences ...string) language.Tag {
	var tags []language.Tag
	for _, pref := range preferences {
		if pref == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// IsSupported reports whether locale parses and matches a supported language.
func IsSupported(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, _, confidence := matcher.Match(tag)
	return confidence != language.No
}
