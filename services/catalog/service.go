// Package catalog aggregates catalog lists from multiple providers into a
// single deduplicated, priority-ordered list, and localizes item synopses.
package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"lingostream/internal/memcache"
	"lingostream/models"
)

// Source is one catalog provider. Trending and Search return normalized
// items; either may return an empty list when the provider has nothing to
// contribute for the request.
type Source interface {
	Name() string
	Trending(ctx context.Context, mediaType string) ([]models.CatalogItem, error)
	Search(ctx context.Context, query, mediaType string) ([]models.CatalogItem, error)
}

// Localizer produces localized synopsis text.
type Localizer interface {
	Localize(ctx context.Context, text, targetLang, tone string) string
}

// Service fans requests out to its sources in parallel and merges the
// results. Source order is priority order: earlier sources win field
// conflicts during dedupe.
type Service struct {
	sources    []Source
	translator Localizer
	cache      *memcache.Cache
	debug      bool
}

// NewService wires the aggregation engine. translator may be nil.
func NewService(sources []Source, translator Localizer, cache *memcache.Cache, debug bool) *Service {
	return &Service{
		sources:    sources,
		translator: translator,
		cache:      cache,
		debug:      debug,
	}
}

// Trending returns the merged trending list for a media type, localized for
// the requested locale.
func (s *Service) Trending(ctx context.Context, mediaType string, loc models.Locale) []models.CatalogItem {
	cacheID := fmt.Sprintf("catalog:trending:%s|%s", mediaType, loc.Language)
	if v, ok := s.cache.Get(cacheID); ok {
		if items, ok := v.([]models.CatalogItem); ok {
			return items
		}
	}

	merged := s.collect(ctx, func(src Source) ([]models.CatalogItem, error) {
		return src.Trending(ctx, mediaType)
	})
	items := s.LocalizeItems(ctx, merged, loc)
	s.cache.Set(cacheID, items)
	return items
}

// Search returns the merged search results for a query, localized for the
// requested locale.
func (s *Service) Search(ctx context.Context, query, mediaType string, loc models.Locale) []models.CatalogItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	cacheID := fmt.Sprintf("catalog:search:%s:%s|%s", mediaType, strings.ToLower(query), loc.Language)
	if v, ok := s.cache.Get(cacheID); ok {
		if items, ok := v.([]models.CatalogItem); ok {
			return items
		}
	}

	merged := s.collect(ctx, func(src Source) ([]models.CatalogItem, error) {
		return src.Search(ctx, query, mediaType)
	})
	items := s.LocalizeItems(ctx, merged, loc)
	s.cache.Set(cacheID, items)
	return items
}

// collect runs the fetch against every source in parallel and merges the
// per-source lists in priority order. A failing source logs and contributes
// nothing; it never sinks the whole request.
func (s *Service) collect(ctx context.Context, fetch func(Source) ([]models.CatalogItem, error)) []models.CatalogItem {
	results := make([][]models.CatalogItem, len(s.sources))

	p := pool.New().WithContext(ctx)
	for i, src := range s.sources {
		p.Go(func(ctx context.Context) error {
			items, err := fetch(src)
			if err != nil {
				log.Printf("[catalog] source %s failed: %v", src.Name(), err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = p.Wait()

	return Merge(results...)
}

// LocalizeItems translates each item's name and description into the target
// locale. Canonical-locale requests and empty fields pass through untouched.
func (s *Service) LocalizeItems(ctx context.Context, items []models.CatalogItem, loc models.Locale) []models.CatalogItem {
	if s.translator == nil || loc.IsCanonical() {
		return items
	}
	out := make([]models.CatalogItem, len(items))
	copy(out, items)
	for i := range out {
		if strings.TrimSpace(out[i].Name) != "" {
			out[i].Name = s.translator.Localize(ctx, out[i].Name, loc.Language, loc.Tone)
		}
		if strings.TrimSpace(out[i].Description) != "" {
			out[i].Description = s.translator.Localize(ctx, out[i].Description, loc.Language, loc.Tone)
		}
	}
	return out
}

// Warm pre-translates the trending catalogs for the target locale so first
// requests hit warm caches. Intended to run once at startup.
func (s *Service) Warm(ctx context.Context, loc models.Locale) {
	if loc.IsCanonical() {
		return
	}
	for _, mediaType := range []string{"movie", "series"} {
		items := s.Trending(ctx, mediaType, loc)
		if s.debug {
			log.Printf("[catalog] pre-translated %d %s items for %s", len(items), mediaType, loc.Language)
		}
	}
}
