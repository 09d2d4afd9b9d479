// Package locale resolves the display language of a request and looks up
// translated strings in locale-keyed maps.
package locale

import (
	"strings"

	"github.com/HerbHall/wakdex/internal/apperr"
)

// Locale is a supported display-language code.
type Locale string

const (
	FR Locale = "fr"
	EN Locale = "en"
	ES Locale = "es"
	PT Locale = "pt"
)

var supported = []Locale{FR, EN, ES, PT}

// Supported returns the closed set of locales in canonical order.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Resolve validates raw against the supported set. Matching is exact: "EN"
// and "en-US" are rejected like any other unknown code.
func Resolve(raw string) (Locale, error) {
	if raw == "" {
		return "", apperr.InvalidLocale("locale is required")
	}
	for _, l := range supported {
		if Locale(raw) == l {
			return l, nil
		}
	}
	return "", apperr.InvalidLocale("locale must be one of " + joined())
}

func joined() string {
	parts := make([]string, len(supported))
	for i, l := range supported {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}

// Field returns the store path of l's entry in the localized map at base,
// e.g. Field("title", EN) == "title.en".
func Field(base string, l Locale) string {
	return base + "." + string(l)
}

// Localized maps language codes to display strings.
type Localized map[string]string

// Get returns the string for l, or nil when the map has no such key. A nil
// map behaves like an empty one.
func (m Localized) Get(l Locale) *string {
	s, ok := m[string(l)]
	if !ok {
		return nil
	}
	return &s
}
