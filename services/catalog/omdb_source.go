package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lingostream/models"
)

const omdbBaseURL = "https://www.omdbapi.com/"

// omdbDetailLimit bounds the per-search detail fetches; OMDB search results
// only carry title/year, so each hit needs a second call for plot and cast.
const omdbDetailLimit = 5

// omdbSource contributes search results from OMDB. It has no trending feed.
type omdbSource struct {
	apiKey string
	httpc  *http.Client
}

// NewOMDBSource creates the OMDB catalog source.
func NewOMDBSource(apiKey string, httpc *http.Client) Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &omdbSource{apiKey: apiKey, httpc: httpc}
}

func (s *omdbSource) Name() string { return "omdb" }

func (s *omdbSource) Trending(context.Context, string) ([]models.CatalogItem, error) {
	return nil, nil
}

type omdbSearchResponse struct {
	Search []struct {
		IMDBID string `json:"imdbID"`
	} `json:"Search"`
}

type omdbDetail struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Type       string `json:"Type"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Actors     string `json:"Actors"`
	IMDBRating string `json:"imdbRating"`
	IMDBID     string `json:"imdbID"`
}

func (s *omdbSource) Search(ctx context.Context, query, mediaType string) ([]models.CatalogItem, error) {
	if s.apiKey == "" || query == "" {
		return nil, nil
	}
	omdbType := "movie"
	if mediaType == "series" {
		omdbType = "series"
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("s", query)
	params.Set("type", omdbType)

	var search omdbSearchResponse
	if err := s.getJSON(ctx, params, &search); err != nil {
		return nil, err
	}
	if len(search.Search) == 0 {
		return nil, nil
	}

	hits := search.Search
	if len(hits) > omdbDetailLimit {
		hits = hits[:omdbDetailLimit]
	}

	items := make([]models.CatalogItem, 0, len(hits))
	for _, hit := range hits {
		detailParams := url.Values{}
		detailParams.Set("apikey", s.apiKey)
		detailParams.Set("i", hit.IMDBID)
		detailParams.Set("plot", "short")

		var detail omdbDetail
		if err := s.getJSON(ctx, detailParams, &detail); err != nil {
			continue
		}
		items = append(items, mapOMDBItem(detail))
	}
	return items, nil
}

func (s *omdbSource) getJSON(ctx context.Context, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, omdbBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// mapOMDBItem normalizes an OMDB detail record. OMDB encodes absent fields
// as the literal string "N/A".
func mapOMDBItem(d omdbDetail) models.CatalogItem {
	itemType := "movie"
	if d.Type == "series" {
		itemType = "series"
	}
	rating := 0.0
	if d.IMDBRating != "" && d.IMDBRating != "N/A" {
		rating, _ = strconv.ParseFloat(d.IMDBRating, 64)
	}
	return models.CatalogItem{
		Source:           "omdb",
		ID:               "omdb_" + d.IMDBID,
		IMDBID:           d.IMDBID,
		ExternalIDs:      map[string]string{"imdb": d.IMDBID},
		Type:             itemType,
		Name:             d.Title,
		Description:      omdbField(d.Plot),
		Poster:           omdbField(d.Poster),
		Year:             omdbYear(d.Year),
		Genres:           omdbSplit(d.Genre),
		OriginalLanguage: "en",
		Rating:           rating,
		Runtime:          omdbField(d.Runtime),
		Cast:             omdbSplit(d.Actors),
	}
}

func omdbField(v string) string {
	if v == "N/A" {
		return ""
	}
	return v
}

func omdbYear(v string) string {
	v = omdbField(v)
	if len(v) > 4 {
		return v[:4]
	}
	return v
}

func omdbSplit(v string) []string {
	v = omdbField(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
