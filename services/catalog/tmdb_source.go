package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lingostream/models"
)

const (
	tmdbBaseURL     = "https://api.themoviedb.org/3"
	tmdbListImgBase = "https://image.tmdb.org/t/p/w342"
)

// tmdbSource feeds trending and search lists from TMDB into the aggregation
// engine. An unconfigured source returns empty lists rather than erroring so
// the other sources still contribute.
type tmdbSource struct {
	apiKey string
	httpc  *http.Client
}

// NewTMDBSource creates the TMDB catalog source.
func NewTMDBSource(apiKey string, httpc *http.Client) Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &tmdbSource{apiKey: apiKey, httpc: httpc}
}

func (s *tmdbSource) Name() string { return "tmdb" }

type tmdbListResult struct {
	Results []tmdbListItem `json:"results"`
}

type tmdbListItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
}

func (s *tmdbSource) Trending(ctx context.Context, mediaType string) ([]models.CatalogItem, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/trending/%s/week", tmdbBaseURL, tmdbEndpointType(mediaType))
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	return s.fetchList(ctx, endpoint, params, mediaType)
}

func (s *tmdbSource) Search(ctx context.Context, query, mediaType string) ([]models.CatalogItem, error) {
	if s.apiKey == "" || query == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/search/%s", tmdbBaseURL, tmdbEndpointType(mediaType))
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", models.CanonicalLang)
	return s.fetchList(ctx, endpoint, params, mediaType)
}

func (s *tmdbSource) fetchList(ctx context.Context, endpoint string, params url.Values, mediaType string) ([]models.CatalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb list request failed: %s", resp.Status)
	}

	var data tmdbListResult
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(data.Results))
	for _, r := range data.Results {
		items = append(items, s.mapItem(r, mediaType))
	}
	return items, nil
}

func (s *tmdbSource) mapItem(r tmdbListItem, mediaType string) models.CatalogItem {
	name := r.Title
	if name == "" {
		name = r.Name
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	year := ""
	if len(date) >= 4 {
		year = date[:4]
	}
	poster := ""
	if r.PosterPath != "" {
		poster = tmdbListImgBase + r.PosterPath
	}
	return models.CatalogItem{
		Source:           "tmdb",
		ID:               fmt.Sprintf("tmdb_%s_%d", mediaType, r.ID),
		ExternalIDs:      map[string]string{"tmdb": strconv.FormatInt(r.ID, 10)},
		Type:             mediaType,
		Name:             name,
		Description:      r.Overview,
		Poster:           poster,
		Year:             year,
		OriginalLanguage: r.OriginalLanguage,
		Popularity:       r.Popularity,
		Rating:           r.VoteAverage,
	}
}

// tmdbEndpointType maps the addon media type to TMDB's URL segment.
func tmdbEndpointType(mediaType string) string {
	if mediaType == "series" {
		return "tv"
	}
	return "movie"
}
