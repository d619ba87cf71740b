// Package glossary applies deterministic term substitutions to localized
// text. The mapping is loaded once at startup and treated as immutable.
package glossary

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Glossary holds compiled word-boundary replacement rules.
type Glossary struct {
	rules []rule
}

// Load reads a JSON object of term → replacement from path. A missing file
// yields an empty glossary, not an error; a malformed file is an error.
func Load(path string) (*Glossary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Glossary{}, nil
		}
		return nil, err
	}
	var terms map[string]string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, err
	}
	return FromMap(terms), nil
}

// FromMap compiles a glossary from an in-memory mapping. Rules are ordered by
// term so repeated runs substitute deterministically.
func FromMap(terms map[string]string) *Glossary {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g := &Glossary{rules: make([]rule, 0, len(keys))}
	for _, k := range keys {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
		if err != nil {
			continue
		}
		g.rules = append(g.rules, rule{pattern: re, replacement: terms[k]})
	}
	return g
}

// Apply runs a single sequential pass of every rule over text.
func (g *Glossary) Apply(text string) string {
	if g == nil || text == "" {
		return text
	}
	for _, r := range g.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}

// Len returns the number of compiled rules.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.rules)
}
