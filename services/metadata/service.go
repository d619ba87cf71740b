// Package metadata resolves movie and series metadata from TMDB with
// language and granularity fallback, localizes the synopsis, and serves the
// result through the shared result cache.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"lingostream/internal/memcache"
	"lingostream/models"
)

// ErrNotFound means the identity mapping or the top-level fetch failed. It
// surfaces as an empty result at the addon boundary, never as a 5xx.
var ErrNotFound = errors.New("metadata: not found")

// Localizer produces localized synopsis text. It never fails; on any
// irrecoverable condition it returns the best available text.
type Localizer interface {
	Localize(ctx context.Context, text, targetLang, tone string) string
}

// Service is the metadata fallback resolver.
type Service struct {
	tmdb       *tmdbClient
	translator Localizer
	cache      *memcache.Cache

	// alwaysSourceEN forces the translation source to the canonical-language
	// overview even when the target-language fetch returned text.
	alwaysSourceEN bool
	debug          bool
}

// NewService wires the resolver. translator may be nil, in which case
// overviews are served untranslated.
func NewService(tmdbAPIKey, tmdbBearer string, httpc *http.Client, translator Localizer, cache *memcache.Cache, alwaysSourceEN, debug bool) *Service {
	return &Service{
		tmdb:           newTMDBClient(tmdbAPIKey, tmdbBearer, httpc),
		translator:     translator,
		cache:          cache,
		alwaysSourceEN: alwaysSourceEN,
		debug:          debug,
	}
}

// Resolve maps an IMDB ID (plus optional season/episode for series) to a
// localized meta record. Failures below the top-level granularity downgrade
// gracefully; top-level failures return ErrNotFound.
func (s *Service) Resolve(ctx context.Context, imdbID, mediaType string, season, episode int, loc models.Locale) (*models.MediaMeta, error) {
	fullID := composeID(imdbID, season, episode)
	cacheID := fmt.Sprintf("meta:%s|%s", fullID, loc.Language)
	if v, ok := s.cache.Get(cacheID); ok {
		if meta, ok := v.(*models.MediaMeta); ok {
			return meta, nil
		}
	}

	kind, tmdbID, err := s.tmdb.findByIMDBID(ctx, imdbID)
	if err != nil {
		if errors.Is(err, errTMDBNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	// Kind/mediaType mismatch is a miss, not an error.
	switch {
	case kind == "movie" && mediaType == "movie":
	case kind == "tv" && mediaType == "series":
	default:
		return nil, ErrNotFound
	}

	var movie, show, seasonRec, episodeRec *record

	if kind == "movie" {
		rec, err := s.fetchLocalized(loc.Language, func(lang string) (record, error) {
			return s.tmdb.fetchMovie(ctx, tmdbID, lang)
		})
		if err != nil {
			log.Printf("[metadata] failed to fetch movie %d: %v", tmdbID, err)
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		movie = &rec
	} else {
		rec, err := s.fetchLocalized(loc.Language, func(lang string) (record, error) {
			return s.tmdb.fetchShow(ctx, tmdbID, lang)
		})
		if err != nil {
			log.Printf("[metadata] failed to fetch series %d: %v", tmdbID, err)
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		show = &rec

		if season > 0 && episode > 0 {
			ep, err := s.fetchLocalized(loc.Language, func(lang string) (record, error) {
				return s.tmdb.fetchEpisode(ctx, tmdbID, season, episode, lang)
			})
			if err != nil {
				// Downgrade to the series record; the episode may simply not
				// exist on the provider yet.
				log.Printf("[metadata] episode %dx%d of %d not found, using series data: %v", season, episode, tmdbID, err)
			} else {
				if strings.TrimSpace(ep.overview) == "" && show.overview != "" {
					ep.overview = show.overview
				}
				episodeRec = &ep
			}
		} else if season > 0 {
			sr, err := s.fetchLocalized(loc.Language, func(lang string) (record, error) {
				return s.tmdb.fetchSeason(ctx, tmdbID, season, lang)
			})
			if err != nil {
				log.Printf("[metadata] season %d of %d not found, using series data: %v", season, tmdbID, err)
			} else {
				seasonRec = &sr
			}
		}
	}

	meta, overview := assembleMeta(fullID, mediaType, season, episode, movie, show, seasonRec, episodeRec)

	if s.alwaysSourceEN && !loc.IsCanonical() {
		if en := s.canonicalOverview(ctx, tmdbID, season, episode, movie, episodeRec, seasonRec); en != "" {
			overview = en
		}
	}

	switch {
	case overview == "":
		meta.Description = ""
	case !loc.IsCanonical() && s.translator != nil:
		meta.Description = s.translator.Localize(ctx, overview, loc.Language, loc.Tone)
	default:
		meta.Description = overview
	}

	s.cache.Set(cacheID, meta)
	return meta, nil
}

// fetchLocalized fetches a record in the requested language and, when its
// overview comes back empty, re-fetches in the canonical language. The rule
// applies independently at every granularity.
func (s *Service) fetchLocalized(lang string, fetch func(lang string) (record, error)) (record, error) {
	rec, err := fetch(lang)
	if err != nil {
		return record{}, err
	}
	if strings.TrimSpace(rec.overview) == "" && normalizeLanguage(lang) != models.CanonicalLang {
		if en, enErr := fetch(models.CanonicalLang); enErr == nil {
			return en, nil
		}
		// Keep the original record when the canonical re-fetch fails.
	}
	return rec, nil
}

// canonicalOverview fetches the overview of the final granularity in the
// canonical language, for use as the translation source.
func (s *Service) canonicalOverview(ctx context.Context, tmdbID int64, season, episode int, movie, episodeRec, seasonRec *record) string {
	var rec record
	var err error
	switch {
	case movie != nil:
		rec, err = s.tmdb.fetchMovie(ctx, tmdbID, models.CanonicalLang)
	case episodeRec != nil:
		rec, err = s.tmdb.fetchEpisode(ctx, tmdbID, season, episode, models.CanonicalLang)
	case seasonRec != nil:
		rec, err = s.tmdb.fetchSeason(ctx, tmdbID, season, models.CanonicalLang)
	default:
		rec, err = s.tmdb.fetchShow(ctx, tmdbID, models.CanonicalLang)
	}
	if err != nil {
		if s.debug {
			log.Printf("[metadata] failed to fetch canonical-language source: %v", err)
		}
		return ""
	}
	return strings.TrimSpace(rec.overview)
}

// assembleMeta builds the outgoing record from the most specific
// successfully-fetched granularity, borrowing absent fields from the parent.
// Precedence: episode > season > movie > show.
func assembleMeta(fullID, mediaType string, season, episode int, movie, show, seasonRec, episodeRec *record) (*models.MediaMeta, string) {
	meta := &models.MediaMeta{
		ID:          fullID,
		Type:        mediaType,
		PosterShape: "poster",
	}
	var overview string

	switch {
	case movie != nil:
		overview = movie.overview
		meta.Name = fallbackStr(movie.title, "Unknown Movie")
		meta.Poster = movie.poster
		meta.Background = movie.backdrop
		meta.ReleaseInfo = movie.year
	case episodeRec != nil:
		overview = episodeRec.overview
		meta.Name = fallbackStr(episodeRec.title, fmt.Sprintf("Episode %d", episode))
		meta.Poster = fallbackStr(episodeRec.still, show.poster)
		meta.Background = show.backdrop
		meta.ReleaseInfo = fallbackStr(parseTMDBYear(episodeRec.airDate), show.year)
		meta.Season = season
		meta.Episode = episode
		meta.SeriesName = show.title
	case seasonRec != nil:
		overview = seasonRec.overview
		meta.Name = fallbackStr(seasonRec.title, fmt.Sprintf("Season %d", season))
		meta.Poster = fallbackStr(seasonRec.poster, show.poster)
		meta.Background = show.backdrop
		meta.ReleaseInfo = fallbackStr(parseTMDBYear(seasonRec.airDate), show.year)
		meta.Season = season
		meta.SeriesName = show.title
	case show != nil:
		overview = show.overview
		meta.Name = fallbackStr(show.title, "Unknown Series")
		meta.Poster = show.poster
		meta.Background = show.backdrop
		meta.ReleaseInfo = show.year
		if season > 0 {
			meta.Season = season
		}
		if episode > 0 {
			meta.Episode = episode
		}
	}
	return meta, strings.TrimSpace(overview)
}

// composeID rebuilds the request ID ("tt123", "tt123:1" or "tt123:1:2").
func composeID(imdbID string, season, episode int) string {
	id := imdbID
	if season > 0 {
		id += fmt.Sprintf(":%d", season)
		if episode > 0 {
			id += fmt.Sprintf(":%d", episode)
		}
	}
	return id
}

func fallbackStr(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
