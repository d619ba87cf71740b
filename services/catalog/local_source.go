package catalog

import (
	"context"
	"strings"

	"lingostream/models"
)

// localSource serves a small built-in catalog, useful as a deterministic
// base list and for running without any provider credentials.
type localSource struct{}

// NewLocalSource returns the built-in sample catalog source.
func NewLocalSource() Source {
	return localSource{}
}

func (localSource) Name() string { return "local" }

var localItems = []models.CatalogItem{
	{
		Source:           "local",
		ID:               "tt0133093",
		IMDBID:           "tt0133093",
		Type:             "movie",
		Name:             "The Matrix",
		Description:      "A computer hacker learns about the true nature of his reality and his role in the war against its controllers.",
		Genres:           []string{"Action", "Sci-Fi"},
		Poster:           "https://image.tmdb.org/t/p/w342/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg",
		Year:             "1999",
		OriginalLanguage: "en",
	},
	{
		Source:           "local",
		ID:               "tt0234215",
		IMDBID:           "tt0234215",
		Type:             "movie",
		Name:             "The Matrix Reloaded",
		Description:      "Neo and the rebel leaders estimate they have 72 hours until 250,000 probes discover Zion and destroy it.",
		Genres:           []string{"Action", "Sci-Fi"},
		Poster:           "https://image.tmdb.org/t/p/w342/9DGjiTAkCvnPlkkXn4tPkjaaviC.jpg",
		Year:             "2003",
		OriginalLanguage: "en",
	},
	{
		Source:           "local",
		ID:               "tt0903747",
		IMDBID:           "tt0903747",
		Type:             "series",
		Name:             "Breaking Bad",
		Description:      "A high school chemistry teacher turned methamphetamine producer navigates the dangers of the criminal underworld.",
		Genres:           []string{"Crime", "Drama", "Thriller"},
		Poster:           "https://image.tmdb.org/t/p/w342/ggFHVNu6YYI5L9pCfOacjizRGt.jpg",
		Year:             "2008",
		OriginalLanguage: "en",
	},
}

func (localSource) Trending(_ context.Context, mediaType string) ([]models.CatalogItem, error) {
	var out []models.CatalogItem
	for _, it := range localItems {
		if it.Type == mediaType {
			out = append(out, it)
		}
	}
	return out, nil
}

func (localSource) Search(_ context.Context, query, mediaType string) ([]models.CatalogItem, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	var out []models.CatalogItem
	for _, it := range localItems {
		if it.Type != mediaType {
			continue
		}
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	return out, nil
}
