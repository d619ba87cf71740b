package translate

import (
	"regexp"
	"strings"
)

// Lexical test for "is this text already written in the target language".
// Counts hits from a fixed list of high-frequency function words per language
// family. The thresholds (3 hits, or 2 when the text carries diacritics typical
// of the family) are empirical defaults, tunable only by disabling the
// heuristic — short or proper-noun-heavy text can be misclassified.

const (
	minTokenHits            = 3
	minTokenHitsWithAccents = 2
)

var accentPattern = regexp.MustCompile(`[áéíóúàâêôãõçñùûüœ]`)

type langProfile struct {
	prefix string
	tokens []*regexp.Regexp
}

func compileTokens(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var langProfiles = []langProfile{
	{prefix: "pt", tokens: compileTokens(
		`\bque\b`, `\bpara\b`, `\bcomo\b`, `\bessa?\b`, `\buma\b`, `\bum\b`,
		`\bnão\b`, `\bmais\b`, `\bentre\b`, `\bseus?\b`,
	)},
	{prefix: "es", tokens: compileTokens(
		`\bque\b`, `\bpara\b`, `\bcomo\b`, `\buna?\b`, `\bno\b`, `\bpero\b`,
		`\bentre\b`, `\bsus?\b`,
	)},
	{prefix: "fr", tokens: compileTokens(
		`\ble\b`, `\bla\b`, `\bles\b`, `\bdes\b`, `\bune?\b`, `\bmais\b`,
		`\bavec\b`, `\bentre\b`,
	)},
}

// looksLikeLanguage reports whether text appears to already be written in the
// language targeted by targetLang. Unknown language families always report
// false, so they are always sent to the translator.
func looksLikeLanguage(text, targetLang string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	target := strings.ToLower(targetLang)

	for _, p := range langProfiles {
		if !strings.HasPrefix(target, p.prefix) {
			continue
		}
		hits := 0
		for _, re := range p.tokens {
			if re.MatchString(lower) {
				hits++
			}
		}
		if hits >= minTokenHits {
			return true
		}
		return accentPattern.MatchString(lower) && hits >= minTokenHitsWithAccents
	}
	return false
}
