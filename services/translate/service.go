// Package translate localizes synopsis text through a layered cache, a
// language-membership heuristic that avoids redundant provider calls, and a
// Gemini-backed translation provider. Localize never fails: on any
// irrecoverable condition it returns the best available text.
package translate

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"strings"

	"lingostream/internal/glossary"
	"lingostream/internal/memcache"
)

// fingerprintLen bounds the encoded-text portion of a cache key. Collisions
// are acceptable for caching; this is not a cryptographic digest.
const fingerprintLen = 40

// Options configure engine behavior.
type Options struct {
	// DisableHeuristic turns off the already-in-target-language skip test,
	// which can misclassify short or proper-noun-heavy text.
	DisableHeuristic bool
	// EnforceTargetLang retries once with a stricter prompt when the output
	// does not pass the heuristic for the target language.
	EnforceTargetLang bool
	// MaxLength bounds the final text; zero means DefaultMaxLength.
	MaxLength int
	Debug     bool
}

// Engine is the translation cache and heuristic engine.
type Engine struct {
	gemini *geminiClient
	mem    *memcache.Cache
	store  *Store
	gloss  *glossary.Glossary
	opts   Options
}

// NewEngine wires the engine. store may be nil (memory-only caching); gloss
// may be nil (no substitutions).
func NewEngine(apiKey, model string, httpc *http.Client, mem *memcache.Cache, store *Store, gloss *glossary.Glossary, opts Options) *Engine {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	return &Engine{
		gemini: newGeminiClient(apiKey, model, httpc),
		mem:    mem,
		store:  store,
		gloss:  gloss,
		opts:   opts,
	}
}

// translationKey builds the content-addressed cache key for a (language,
// tone, text) triple.
func translationKey(lang, tone, text string) string {
	fp := base64.StdEncoding.EncodeToString([]byte(text))
	if len(fp) > fingerprintLen {
		fp = fp[:fingerprintLen]
	}
	return "gemini:" + lang + ":" + tone + ":" + fp
}

// Localize returns text localized to targetLang with the requested tone. It
// never returns an error: translation failures fall back to the original
// text, logged as warnings.
func (e *Engine) Localize(ctx context.Context, text, targetLang, tone string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return trimmed
	}
	if tone == "" {
		tone = "natural"
	}

	if !e.opts.DisableHeuristic && looksLikeLanguage(trimmed, targetLang) {
		if e.opts.Debug {
			log.Printf("[translate] skipping, text already looks like %s (len=%d)", targetLang, len(trimmed))
		}
		return trimmed
	}

	key := translationKey(targetLang, tone, trimmed)
	if v, ok := e.mem.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := e.store.Get(key); ok {
		e.mem.Set(key, s)
		return s
	}

	translated, err := e.gemini.generate(ctx, translationPrompt(trimmed, targetLang, tone))
	if err != nil {
		log.Printf("[translate] translation unavailable, returning original: %v", err)
		return trimmed
	}

	if e.opts.EnforceTargetLang && !looksLikeLanguage(translated, targetLang) {
		if e.opts.Debug {
			log.Printf("[translate] output does not look like %s, retrying with reinforced prompt", targetLang)
		}
		if retryText, retryErr := e.gemini.generate(ctx, reinforcedPrompt(trimmed, targetLang)); retryErr == nil {
			if looksLikeLanguage(retryText, targetLang) {
				translated = retryText
			}
		} else if e.opts.Debug {
			log.Printf("[translate] reinforced retry failed: %v", retryErr)
		}
	}

	final := sanitizeText(translated)
	if final == "" {
		final = trimmed
	}
	final = limitLength(final, e.opts.MaxLength)
	final = e.gloss.Apply(final)

	e.mem.Set(key, final)
	if err := e.store.Put(key, trimmed, final, targetLang, tone); err != nil {
		log.Printf("[translate] failed to persist translation: %v", err)
	}
	return final
}

func translationPrompt(text, targetLang, tone string) string {
	var b strings.Builder
	b.WriteString("You are a professional translator of audiovisual synopses.\n")
	b.WriteString("Translate the text below to " + targetLang + ", preserving meaning, fluency and proper nouns, without inventing content.\n")
	b.WriteString("Tone: " + tone + ".\n")
	b.WriteString("Return only the final text, with no markdown and no tags.\n\n")
	b.WriteString("Text:\n\"\"\"" + text + "\"\"\"")
	return b.String()
}

func reinforcedPrompt(text, targetLang string) string {
	return "Translate faithfully to " + targetLang + " (variant " + targetLang + "). " +
		"Preserve proper nouns. Respond ONLY in " + targetLang + ". Text:\n\"\"\"" + text + "\"\"\""
}
