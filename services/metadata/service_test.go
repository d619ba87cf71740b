package metadata

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lingostream/internal/memcache"
	"lingostream/models"
)

// recordingLocalizer marks every text it sees so tests can tell translated
// output from pass-through output.
type recordingLocalizer struct {
	calls int32
	last  string
}

func (l *recordingLocalizer) Localize(_ context.Context, text, targetLang, tone string) string {
	atomic.AddInt32(&l.calls, 1)
	l.last = text
	return "[" + targetLang + "] " + text
}

func newTestService(transport roundTripFunc, loc *recordingLocalizer, alwaysSourceEN bool) (*Service, *memcache.Cache) {
	cache := memcache.New(100, time.Minute, false)
	var localizer Localizer
	if loc != nil {
		localizer = loc
	}
	s := NewService("test-key", "", &http.Client{Transport: transport}, localizer, cache, alwaysSourceEN, false)
	s.tmdb.minInterval = 0
	s.tmdb.retryDelay = 0
	return s, cache
}

func ptBR() models.Locale { return models.Locale{Language: "pt-BR", Tone: "natural"} }

func TestResolveMovieTranslatesAndCaches(t *testing.T) {
	var httpCalls int32
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&httpCalls, 1)
		switch {
		case req.URL.Path == "/3/find/tt0133093":
			return jsonResponse(http.StatusOK, `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`), nil
		case req.URL.Path == "/3/movie/603":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"Matrix","overview":"A hacker learns the truth.","poster_path":"/p.jpg","backdrop_path":"/b.jpg","release_date":"1999-03-30"}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	loc := &recordingLocalizer{}
	s, cache := newTestService(transport, loc, false)

	meta, err := s.Resolve(context.Background(), "tt0133093", "movie", 0, 0, ptBR())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if meta.ID != "tt0133093" || meta.Type != "movie" {
		t.Fatalf("unexpected identity: %+v", meta)
	}
	if meta.Name != "Matrix" || meta.ReleaseInfo != "1999" {
		t.Fatalf("unexpected fields: %+v", meta)
	}
	if meta.Description != "[pt-BR] A hacker learns the truth." {
		t.Fatalf("expected translated description, got %q", meta.Description)
	}
	if !strings.HasPrefix(meta.Poster, "https://image.tmdb.org/t/p/w500") {
		t.Fatalf("unexpected poster %q", meta.Poster)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cache entry, got %d", cache.Len())
	}

	// Second resolve is served entirely from cache.
	before := atomic.LoadInt32(&httpCalls)
	again, err := s.Resolve(context.Background(), "tt0133093", "movie", 0, 0, ptBR())
	if err != nil {
		t.Fatalf("Resolve (cached): %v", err)
	}
	if again.Description != meta.Description {
		t.Fatalf("cached result differs: %q", again.Description)
	}
	if atomic.LoadInt32(&httpCalls) != before {
		t.Fatal("expected no additional HTTP calls on cache hit")
	}
}

func TestResolveCanonicalLocaleSkipsTranslation(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/find/tt0133093":
			return jsonResponse(http.StatusOK, `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`), nil
		case req.URL.Path == "/3/movie/603":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"The Matrix","overview":"A hacker learns the truth."}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	loc := &recordingLocalizer{}
	s, _ := newTestService(transport, loc, false)

	meta, err := s.Resolve(context.Background(), "tt0133093", "movie", 0, 0, models.Locale{Language: "en-US", Tone: "natural"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if meta.Description != "A hacker learns the truth." {
		t.Fatalf("expected untranslated description, got %q", meta.Description)
	}
	if atomic.LoadInt32(&loc.calls) != 0 {
		t.Fatal("localizer must not run for the canonical locale")
	}
}

func TestResolveEmptyOverviewRefetchesCanonical(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/find/tt0133093":
			return jsonResponse(http.StatusOK, `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`), nil
		case req.URL.Path == "/3/movie/603" && req.URL.Query().Get("language") == "pt-BR":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"Matrix","overview":""}`), nil
		case req.URL.Path == "/3/movie/603" && req.URL.Query().Get("language") == "en-US":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"The Matrix","overview":"A hacker learns the truth."}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	loc := &recordingLocalizer{}
	s, _ := newTestService(transport, loc, false)

	meta, err := s.Resolve(context.Background(), "tt0133093", "movie", 0, 0, ptBR())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if meta.Description != "[pt-BR] A hacker learns the truth." {
		t.Fatalf("expected translated canonical overview, got %q", meta.Description)
	}
}

func TestResolveEpisodeNotFoundUsesSeriesData(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/find/tt0903747":
			return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[{"id":1396,"name":"Breaking Bad"}]}`), nil
		case req.URL.Path == "/3/tv/1396":
			return jsonResponse(http.StatusOK, `{"id":1396,"name":"Breaking Bad","overview":"A teacher turns to crime.","poster_path":"/bb.jpg","first_air_date":"2008-01-20"}`), nil
		case strings.HasPrefix(req.URL.Path, "/3/tv/1396/season/1/episode/99"):
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	s, _ := newTestService(transport, nil, false)

	meta, err := s.Resolve(context.Background(), "tt0903747", "series", 1, 99, ptBR())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if meta.ID != "tt0903747:1:99" {
		t.Fatalf("unexpected id %q", meta.ID)
	}
	if meta.Name != "Breaking Bad" {
		t.Fatalf("expected series fallback name, got %q", meta.Name)
	}
	if meta.Description != "A teacher turns to crime." {
		t.Fatalf("expected series overview, got %q", meta.Description)
	}
	if meta.Season != 1 || meta.Episode != 99 {
		t.Fatalf("expected season/episode preserved, got %d/%d", meta.Season, meta.Episode)
	}
}

func TestResolveEpisodeBorrowsShowOverview(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/3/find/tt0903747":
			return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[{"id":1396,"name":"Breaking Bad"}]}`), nil
		case req.URL.Path == "/3/tv/1396":
			return jsonResponse(http.StatusOK, `{"id":1396,"name":"Breaking Bad","overview":"A teacher turns to crime.","poster_path":"/bb.jpg"}`), nil
		case strings.HasPrefix(req.URL.Path, "/3/tv/1396/season/1/episode/1"):
			// Episode exists but carries no overview in any language.
			return jsonResponse(http.StatusOK, `{"id":62085,"name":"Pilot","overview":"","still_path":"/still.jpg","air_date":"2008-01-20","season_number":1,"episode_number":1}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	s, _ := newTestService(transport, nil, false)

	meta, err := s.Resolve(context.Background(), "tt0903747", "series", 1, 1, ptBR())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if meta.Name != "Pilot" {
		t.Fatalf("expected episode name, got %q", meta.Name)
	}
	if meta.Description != "A teacher turns to crime." {
		t.Fatalf("expected borrowed show overview, got %q", meta.Description)
	}
	if meta.SeriesName != "Breaking Bad" {
		t.Fatalf("expected series name, got %q", meta.SeriesName)
	}
	if !strings.Contains(meta.Poster, "/w300/still.jpg") {
		t.Fatalf("expected episode still as poster, got %q", meta.Poster)
	}
}

func TestResolveKindMismatch(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`), nil
	})
	s, _ := newTestService(transport, nil, false)

	_, err := s.Resolve(context.Background(), "tt0133093", "series", 0, 0, ptBR())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveUnknownID(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[]}`), nil
	})
	s, _ := newTestService(transport, nil, false)

	_, err := s.Resolve(context.Background(), "tt9999999", "movie", 0, 0, ptBR())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveAlwaysSourceEN(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		lang := req.URL.Query().Get("language")
		switch {
		case req.URL.Path == "/3/find/tt0133093":
			return jsonResponse(http.StatusOK, `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`), nil
		case req.URL.Path == "/3/movie/603" && lang == "pt-BR":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"Matrix","overview":"Sinopse localizada do provedor."}`), nil
		case req.URL.Path == "/3/movie/603" && lang == "en-US":
			return jsonResponse(http.StatusOK, `{"id":603,"title":"The Matrix","overview":"A hacker learns the truth."}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	loc := &recordingLocalizer{}
	s, _ := newTestService(transport, loc, true)

	meta, err := s.Resolve(context.Background(), "tt0133093", "movie", 0, 0, ptBR())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// The canonical overview, not the provider's localized one, feeds the
	// translator.
	if loc.last != "A hacker learns the truth." {
		t.Fatalf("expected canonical source text, translator saw %q", loc.last)
	}
	if meta.Description != "[pt-BR] A hacker learns the truth." {
		t.Fatalf("got %q", meta.Description)
	}
}

func TestComposeID(t *testing.T) {
	tests := []struct {
		imdbID  string
		season  int
		episode int
		want    string
	}{
		{"tt1", 0, 0, "tt1"},
		{"tt1", 2, 0, "tt1:2"},
		{"tt1", 2, 5, "tt1:2:5"},
	}
	for _, tt := range tests {
		if got := composeID(tt.imdbID, tt.season, tt.episode); got != tt.want {
			t.Fatalf("composeID(%q,%d,%d) = %q, want %q", tt.imdbID, tt.season, tt.episode, got, tt.want)
		}
	}
}
