package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/text/language"

	"lingostream/models"
)

// Minimal TMDB v3 client (find, movie/tv/season/episode detail endpoints).

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w780"
	tmdbStillSize    = "w300"
)

var (
	errTMDBNotFound    = errors.New("tmdb: not found")
	errTMDBRateLimited = errors.New("tmdb: rate limited")
)

type tmdbClient struct {
	apiKey string
	bearer string
	httpc  *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration

	retryDelay time.Duration
}

func newTMDBClient(apiKey, bearer string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		bearer:      strings.TrimSpace(bearer),
		httpc:       httpc,
		minInterval: 20 * time.Millisecond,
		retryDelay:  500 * time.Millisecond,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != "" || c.bearer != ""
}

// doGET performs an authenticated GET against the TMDB API. Rate limiting
// (429) gets exactly one fixed-delay retry; other failures return directly.
func (c *tmdbClient) doGET(ctx context.Context, path string, params url.Values, v any) error {
	if !c.isConfigured() {
		return errors.New("tmdb: TMDB_API_KEY or TMDB_BEARER is required")
	}

	q := url.Values{}
	for k, vals := range params {
		for _, val := range vals {
			if val != "" {
				q.Add(k, val)
			}
		}
	}
	if c.bearer == "" {
		q.Set("api_key", c.apiKey)
	}
	endpoint := tmdbBaseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if c.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+c.bearer)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
				return retry.Unrecoverable(fmt.Errorf("%w: %s", errTMDBNotFound, path))
			case resp.StatusCode == http.StatusTooManyRequests:
				io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
				return fmt.Errorf("%w: %s", errTMDBRateLimited, path)
			case resp.StatusCode >= 300:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return retry.Unrecoverable(fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body))))
			}
			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errTMDBRateLimited) }),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

func (c *tmdbClient) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
}

// findByIMDBID maps an IMDB ID to a TMDB internal ID and kind (movie|tv).
func (c *tmdbClient) findByIMDBID(ctx context.Context, imdbID string) (string, int64, error) {
	var resp struct {
		MovieResults []tmdbMovieData `json:"movie_results"`
		TVResults    []tmdbTVData    `json:"tv_results"`
	}
	params := url.Values{}
	params.Set("external_source", "imdb_id")
	if err := c.doGET(ctx, "/find/"+url.PathEscape(imdbID), params, &resp); err != nil {
		return "", 0, err
	}
	if len(resp.MovieResults) > 0 {
		return "movie", resp.MovieResults[0].ID, nil
	}
	if len(resp.TVResults) > 0 {
		return "tv", resp.TVResults[0].ID, nil
	}
	return "", 0, fmt.Errorf("%w: %s", errTMDBNotFound, imdbID)
}

func (c *tmdbClient) fetchMovie(ctx context.Context, id int64, lang string) (record, error) {
	var data tmdbMovieData
	params := url.Values{}
	params.Set("language", normalizeLanguage(lang))
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%d", id), params, &data); err != nil {
		return record{}, err
	}
	return normalizeMovie(data), nil
}

func (c *tmdbClient) fetchShow(ctx context.Context, id int64, lang string) (record, error) {
	var data tmdbTVData
	params := url.Values{}
	params.Set("language", normalizeLanguage(lang))
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d", id), params, &data); err != nil {
		return record{}, err
	}
	return normalizeTV(data), nil
}

func (c *tmdbClient) fetchSeason(ctx context.Context, id int64, season int, lang string) (record, error) {
	var data tmdbSeasonData
	params := url.Values{}
	params.Set("language", normalizeLanguage(lang))
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), params, &data); err != nil {
		return record{}, err
	}
	return normalizeSeason(data), nil
}

func (c *tmdbClient) fetchEpisode(ctx context.Context, id int64, season, episode int, lang string) (record, error) {
	var data tmdbEpisodeData
	params := url.Values{}
	params.Set("language", normalizeLanguage(lang))
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d/episode/%d", id, season, episode), params, &data); err != nil {
		return record{}, err
	}
	return normalizeEpisode(data), nil
}

type tmdbMovieData struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	PosterPath    string `json:"poster_path"`
	BackdropPath  string `json:"backdrop_path"`
	ReleaseDate   string `json:"release_date"`
}

type tmdbTVData struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	FirstAirDate string `json:"first_air_date"`
}

type tmdbSeasonData struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
	SeasonNumber int    `json:"season_number"`
}

type tmdbEpisodeData struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	StillPath     string `json:"still_path"`
	AirDate       string `json:"air_date"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
}

// record is one fetched granularity normalized to a common shape. Absent
// fields stay zero-valued and are borrowed from the next-higher granularity
// when the final meta is assembled.
type record struct {
	kind     string // movie, show, season, episode
	id       int64
	title    string
	overview string
	poster   string
	backdrop string
	still    string
	year     string
	airDate  string
	season   int
	episode  int
}

func normalizeMovie(d tmdbMovieData) record {
	title := d.Title
	if title == "" {
		title = d.OriginalTitle
	}
	return record{
		kind:     "movie",
		id:       d.ID,
		title:    title,
		overview: d.Overview,
		poster:   buildTMDBImage(d.PosterPath, tmdbPosterSize),
		backdrop: buildTMDBImage(d.BackdropPath, tmdbBackdropSize),
		year:     parseTMDBYear(d.ReleaseDate),
	}
}

func normalizeTV(d tmdbTVData) record {
	title := d.Name
	if title == "" {
		title = d.OriginalName
	}
	return record{
		kind:     "show",
		id:       d.ID,
		title:    title,
		overview: d.Overview,
		poster:   buildTMDBImage(d.PosterPath, tmdbPosterSize),
		backdrop: buildTMDBImage(d.BackdropPath, tmdbBackdropSize),
		year:     parseTMDBYear(d.FirstAirDate),
	}
}

func normalizeSeason(d tmdbSeasonData) record {
	return record{
		kind:     "season",
		id:       d.ID,
		title:    d.Name,
		overview: d.Overview,
		poster:   buildTMDBImage(d.PosterPath, tmdbPosterSize),
		airDate:  d.AirDate,
		season:   d.SeasonNumber,
	}
}

func normalizeEpisode(d tmdbEpisodeData) record {
	return record{
		kind:     "episode",
		id:       d.ID,
		title:    d.Name,
		overview: d.Overview,
		still:    buildTMDBImage(d.StillPath, tmdbStillSize),
		airDate:  d.AirDate,
		season:   d.SeasonNumber,
		episode:  d.EpisodeNumber,
	}
}

// buildTMDBImage converts a TMDB image path into a full URL, or "" when the
// path is absent.
func buildTMDBImage(path, size string) string {
	if path == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + size + path
}

// parseTMDBYear extracts the year from a TMDB date string ("2006-01-02").
func parseTMDBYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// normalizeLanguage canonicalizes a user-supplied language tag for TMDB,
// expanding bare language codes to the concrete regional variants TMDB has
// the best data for.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return models.CanonicalLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return models.CanonicalLang
	}
	s := tag.String()
	if !strings.Contains(s, "-") {
		switch s {
		case "en":
			return "en-US"
		case "pt":
			return "pt-BR"
		case "es":
			return "es-ES"
		case "fr":
			return "fr-FR"
		}
	}
	return s
}
