package models

// Manifest describes the addon to clients, following the addon protocol.
type Manifest struct {
	ID            string            `json:"id"`
	Version       string            `json:"version"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Resources     []string          `json:"resources"`
	Types         []string          `json:"types"`
	IDPrefixes    []string          `json:"idPrefixes"`
	Catalogs      []ManifestCatalog `json:"catalogs"`
	Config        []ManifestConfig  `json:"config,omitempty"`
	BehaviorHints map[string]bool   `json:"behaviorHints,omitempty"`
}

// ManifestCatalog announces one catalog endpoint in the manifest.
type ManifestCatalog struct {
	Type  string   `json:"type"`
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Extra []string `json:"extraSupported,omitempty"`
}

// ManifestConfig is one user-facing configuration field.
type ManifestConfig struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Required bool     `json:"required"`
}

// DefaultManifest returns the manifest served by this addon.
func DefaultManifest() Manifest {
	return Manifest{
		ID:          "org.lingostream.synopsis",
		Version:     "1.0.0",
		Name:        "Synopsis Translator",
		Description: "Localized movie and series synopses with catalog aggregation",
		Resources:   []string{"meta", "catalog"},
		Types:       []string{"movie", "series"},
		IDPrefixes:  []string{"tt"},
		Catalogs: []ManifestCatalog{
			{Type: "movie", ID: "lingostream-trending", Name: "Trending", Extra: []string{"search"}},
			{Type: "series", ID: "lingostream-trending", Name: "Trending", Extra: []string{"search"}},
		},
		Config: []ManifestConfig{
			{Key: "lang", Title: "Synopsis language", Type: "select",
				Options: []string{"pt-PT", "pt-BR", "es-ES", "en-US", "fr-FR"}, Default: "pt-PT", Required: true},
			{Key: "tone", Title: "Text tone", Type: "select",
				Options: []string{"natural", "formal", "neutral"}, Default: "natural", Required: false},
		},
		BehaviorHints: map[string]bool{"configurable": true, "configurationRequired": false},
	}
}
