package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingostream/models"
)

func TestMergeKeepsFirstOccurrenceOrder(t *testing.T) {
	a := []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One"},
		{Source: "local", IMDBID: "tt2", Name: "Two"},
	}
	b := []models.CatalogItem{
		{Source: "tmdb", IMDBID: "tt3", Name: "Three"},
		{Source: "tmdb", IMDBID: "tt1", Name: "One (tmdb)"},
	}

	got := Merge(a, b)
	require.Len(t, got, 3)
	assert.Equal(t, "tt1", got[0].IMDBID)
	assert.Equal(t, "tt2", got[1].IMDBID)
	assert.Equal(t, "tt3", got[2].IMDBID)
	// First occurrence wins the name conflict.
	assert.Equal(t, "One", got[0].Name)
}

func TestMergeIsIdempotent(t *testing.T) {
	list := []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One", Description: "first"},
		{Source: "local", IMDBID: "tt2", Name: "Two"},
	}

	once := Merge(list)
	twice := Merge(list, list)
	assert.Equal(t, once, twice)
}

func TestMergeEnrichesMissingFields(t *testing.T) {
	base := []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One"},
	}
	richer := []models.CatalogItem{
		{
			Source:      "omdb",
			IMDBID:      "tt1",
			Name:        "One (omdb)",
			Description: "An overview.",
			Poster:      "https://img/one.jpg",
			Year:        "1999",
			Genres:      []string{"Drama"},
			Rating:      8.7,
		},
	}

	got := Merge(base, richer)
	require.Len(t, got, 1)
	it := got[0]
	assert.Equal(t, "One", it.Name, "populated field must not be overwritten")
	assert.Equal(t, "An overview.", it.Description)
	assert.Equal(t, "https://img/one.jpg", it.Poster)
	assert.Equal(t, "1999", it.Year)
	assert.Equal(t, []string{"Drama"}, it.Genres)
	assert.Equal(t, 8.7, it.Rating)
}

func TestMergeUnionsExternalIDs(t *testing.T) {
	a := []models.CatalogItem{
		{IMDBID: "tt1", Name: "One", ExternalIDs: map[string]string{"imdb": "tt1"}},
	}
	b := []models.CatalogItem{
		{IMDBID: "tt1", Name: "One", ExternalIDs: map[string]string{"tmdb": "603", "imdb": "tt-other"}},
	}

	got := Merge(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"imdb": "tt1", "tmdb": "603"}, got[0].ExternalIDs)
}

func TestMergeFallsBackToNameIdentity(t *testing.T) {
	a := []models.CatalogItem{{Source: "local", Name: "The Matrix"}}
	b := []models.CatalogItem{{Source: "tmdb", Name: "the matrix", Description: "An overview."}}

	got := Merge(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, "An overview.", got[0].Description)
}

func TestMergeSkipsItemsWithoutIdentity(t *testing.T) {
	got := Merge([]models.CatalogItem{{Source: "tmdb", Name: "  "}})
	assert.Empty(t, got)
}
