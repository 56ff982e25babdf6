// locale.go: locale normalization for disease names and treatment text.
package conf

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultFallbackLocale is used when a requested locale has no catalogue data.
const DefaultFallbackLocale = "en"

// SupportedLocales are the locales the embedded catalogue carries text for.
var SupportedLocales = []string{"en", "hi", "sw"}

// localeNames maps spelled-out language names to locale codes.
var localeNames = map[string]string{
	"english": "en",
	"hindi":   "hi",
	"swahili": "sw",
}

var supportedTags = func() []language.Tag {
	tags := make([]language.Tag, 0, len(SupportedLocales))
	for _, l := range SupportedLocales {
		tags = append(tags, language.MustParse(l))
	}
	return tags
}()

var localeMatcher = language.NewMatcher(supportedTags)

// NormalizeLocale accepts a locale code ("en", "hi-IN") or a spelled-out
// language name ("English") and returns the supported locale code it maps to.
func NormalizeLocale(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return DefaultFallbackLocale, nil
	}
	if IsLocaleSupported(trimmed) {
		return trimmed, nil
	}

	if code, ok := localeNames[trimmed]; ok {
		return code, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unsupported locale: %q", input)
	}

	_, index, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return "", fmt.Errorf("unsupported locale: %q", input)
	}
	return SupportedLocales[index], nil
}

// IsLocaleSupported reports whether the catalogue carries text for locale.
func IsLocaleSupported(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}
