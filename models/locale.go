package models

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalLang is the fallback locale used whenever a requested-language
// fetch yields an empty description.
const CanonicalLang = "en-US"

// Locale is the per-request localization configuration. It is never persisted
// on its own; it only participates in cache key composition.
type Locale struct {
	Language string // BCP-47 tag, e.g. "pt-BR"
	Tone     string // e.g. "natural", "formal", "neutral"
}

// ParseLocale normalizes a user-supplied language tag and tone into a Locale.
// Unparseable or empty tags fall back to the given defaults.
func ParseLocale(lang, tone, defaultLang, defaultTone string) Locale {
	loc := Locale{Language: defaultLang, Tone: defaultTone}
	if loc.Language == "" {
		loc.Language = CanonicalLang
	}
	if loc.Tone == "" {
		loc.Tone = "natural"
	}

	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			loc.Language = tag.String()
		}
	}
	if tone = strings.TrimSpace(strings.ToLower(tone)); tone != "" {
		loc.Tone = tone
	}
	return loc
}

// LanguageBase returns the primary language subtag ("pt" for "pt-BR").
func (l Locale) LanguageBase() string {
	tag, err := language.Parse(l.Language)
	if err != nil {
		if idx := strings.Index(l.Language, "-"); idx > 0 {
			return strings.ToLower(l.Language[:idx])
		}
		return strings.ToLower(l.Language)
	}
	base, _ := tag.Base()
	return base.String()
}

// IsCanonical reports whether the locale targets the canonical language.
func (l Locale) IsCanonical() bool {
	return l.LanguageBase() == "en"
}
