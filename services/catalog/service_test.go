package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"lingostream/internal/memcache"
	"lingostream/models"
)

type fakeSource struct {
	name     string
	trending []models.CatalogItem
	results  []models.CatalogItem
	err      error
	calls    int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Trending(context.Context, string) ([]models.CatalogItem, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.trending, f.err
}

func (f *fakeSource) Search(context.Context, string, string) ([]models.CatalogItem, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.results, f.err
}

type prefixLocalizer struct{ calls int32 }

func (l *prefixLocalizer) Localize(_ context.Context, text, targetLang, _ string) string {
	atomic.AddInt32(&l.calls, 1)
	return "[" + targetLang + "] " + text
}

func newCatalogService(translator Localizer, sources ...Source) *Service {
	return NewService(sources, translator, memcache.New(100, time.Minute, false), false)
}

func TestTrendingMergesByPriority(t *testing.T) {
	first := &fakeSource{name: "local", trending: []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One", Description: "local overview"},
	}}
	second := &fakeSource{name: "tmdb", trending: []models.CatalogItem{
		{Source: "tmdb", IMDBID: "tt1", Name: "One (tmdb)", Poster: "https://img/one.jpg"},
		{Source: "tmdb", IMDBID: "tt2", Name: "Two"},
	}}

	s := newCatalogService(nil, first, second)
	items := s.Trending(context.Background(), "movie", models.Locale{Language: "en-US"})

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "One" {
		t.Fatalf("first source must win conflicts, got %q", items[0].Name)
	}
	if items[0].Poster != "https://img/one.jpg" {
		t.Fatalf("expected poster enrichment, got %q", items[0].Poster)
	}
}

func TestTrendingSurvivesFailingSource(t *testing.T) {
	broken := &fakeSource{name: "tmdb", err: errors.New("upstream down")}
	working := &fakeSource{name: "local", trending: []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One"},
	}}

	s := newCatalogService(nil, broken, working)
	items := s.Trending(context.Background(), "movie", models.Locale{Language: "en-US"})

	if len(items) != 1 || items[0].IMDBID != "tt1" {
		t.Fatalf("expected the working source's item, got %+v", items)
	}
}

func TestTrendingCachesResults(t *testing.T) {
	src := &fakeSource{name: "local", trending: []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One"},
	}}

	s := newCatalogService(nil, src)
	loc := models.Locale{Language: "en-US"}
	s.Trending(context.Background(), "movie", loc)
	s.Trending(context.Background(), "movie", loc)

	if n := atomic.LoadInt32(&src.calls); n != 1 {
		t.Fatalf("expected 1 source call, got %d", n)
	}
}

func TestTrendingLocalizesNamesAndDescriptions(t *testing.T) {
	src := &fakeSource{name: "local", trending: []models.CatalogItem{
		{Source: "local", IMDBID: "tt1", Name: "One", Description: "An overview."},
		{Source: "local", IMDBID: "tt2", Name: "Two"},
	}}
	translator := &prefixLocalizer{}

	s := newCatalogService(translator, src)
	items := s.Trending(context.Background(), "movie", models.Locale{Language: "pt-BR", Tone: "natural"})

	if items[0].Name != "[pt-BR] One" {
		t.Fatalf("expected localized name, got %q", items[0].Name)
	}
	if items[0].Description != "[pt-BR] An overview." {
		t.Fatalf("expected localized description, got %q", items[0].Description)
	}
	// Two names plus one description; empty fields never reach the translator.
	if n := atomic.LoadInt32(&translator.calls); n != 3 {
		t.Fatalf("expected 3 localize calls, got %d", n)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	src := &fakeSource{name: "local"}
	s := newCatalogService(nil, src)

	if items := s.Search(context.Background(), "   ", "movie", models.Locale{Language: "en-US"}); items != nil {
		t.Fatalf("expected nil for empty query, got %+v", items)
	}
	if atomic.LoadInt32(&src.calls) != 0 {
		t.Fatal("sources must not be queried for an empty search")
	}
}

func TestLocalizeItemsCanonicalPassThrough(t *testing.T) {
	translator := &prefixLocalizer{}
	s := newCatalogService(translator)

	items := []models.CatalogItem{{IMDBID: "tt1", Description: "An overview."}}
	got := s.LocalizeItems(context.Background(), items, models.Locale{Language: "en-US"})

	if got[0].Description != "An overview." {
		t.Fatalf("canonical locale must pass through, got %q", got[0].Description)
	}
	if atomic.LoadInt32(&translator.calls) != 0 {
		t.Fatal("translator must not run for the canonical locale")
	}
}

func TestLocalSourceSearch(t *testing.T) {
	src := NewLocalSource()

	items, err := src.Search(context.Background(), "matrix", "movie")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}

	series, err := src.Trending(context.Background(), "series")
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(series) != 1 || series[0].IMDBID != "tt0903747" {
		t.Fatalf("unexpected series list: %+v", series)
	}
}
