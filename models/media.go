package models

import "strings"

// MediaMeta is the canonical record served for a meta request. Description is
// always present in the JSON output, even when empty, so clients never see a
// missing field.
type MediaMeta struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Poster      string `json:"poster,omitempty"`
	Background  string `json:"background,omitempty"`
	PosterShape string `json:"posterShape,omitempty"`
	ReleaseInfo string `json:"releaseInfo,omitempty"`
	Season      int    `json:"season,omitempty"`
	Episode     int    `json:"episode,omitempty"`
	SeriesName  string `json:"seriesName,omitempty"`
}

// CatalogItem is a normalized provider record used by the aggregation engine.
type CatalogItem struct {
	Source           string            `json:"source"`
	ID               string            `json:"id"`
	IMDBID           string            `json:"imdbId,omitempty"`
	ExternalIDs      map[string]string `json:"externalIds,omitempty"`
	Type             string            `json:"type"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Poster           string            `json:"poster,omitempty"`
	Year             string            `json:"year,omitempty"`
	Genres           []string          `json:"genres,omitempty"`
	OriginalLanguage string            `json:"originalLanguage,omitempty"`
	Popularity       float64           `json:"popularity,omitempty"`
	Rating           float64           `json:"rating,omitempty"`
	Runtime          string            `json:"runtime,omitempty"`
	Cast             []string          `json:"cast,omitempty"`
}

// IdentityKey returns the value used to decide whether two records from
// different sources describe the same title: the stable IMDB ID when known,
// otherwise the lower-cased name as a weak fallback.
func (it CatalogItem) IdentityKey() string {
	if it.IMDBID != "" {
		return it.IMDBID
	}
	return strings.ToLower(strings.TrimSpace(it.Name))
}
