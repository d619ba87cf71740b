package translate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLength bounds a localized overview.
	DefaultMaxLength = 1200
	// minSentenceOffset is how far into the truncation window a sentence
	// boundary must sit before we cut there instead of hard-truncating.
	minSentenceOffset = 100
)

var (
	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&quot;", `"`,
		"&lt;", "<",
		"&gt;", ">",
	)
	spaceBeforeNewline = regexp.MustCompile(`[ \t]+\n`)
	excessNewlines     = regexp.MustCompile(`\n{3,}`)
)

// sanitizeText strips carriage returns, decodes the small set of HTML
// entities providers leak into overviews, collapses runs of blank lines, and
// trims surrounding whitespace.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = entityReplacer.Replace(text)
	text = spaceBeforeNewline.ReplaceAllString(text, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// limitLength truncates text to at most max bytes, preferring the last
// sentence boundary past minSentenceOffset and appending an ellipsis.
func limitLength(text string, max int) string {
	if max <= 0 {
		max = DefaultMaxLength
	}
	if len(text) <= max {
		return text
	}

	window := text[:max-3]
	// Back off a partial UTF-8 sequence at the cut point.
	for len(window) > 0 && !utf8.RuneStart(window[len(window)-1]) {
		window = window[:len(window)-1]
	}

	last := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(window, sep); idx > last {
			last = idx
		}
	}
	if last > minSentenceOffset {
		return window[:last+1] + "..."
	}
	return window + "..."
}
