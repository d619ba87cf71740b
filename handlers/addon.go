// Package handlers exposes the addon protocol surface: manifest, catalog and
// meta endpoints. Responses are always 200 with JSON bodies; lookup failures
// degrade to empty payloads so clients never see a 5xx.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"lingostream/models"
	"lingostream/services/catalog"
	"lingostream/services/metadata"
)

type metaResolver interface {
	Resolve(ctx context.Context, imdbID, mediaType string, season, episode int, loc models.Locale) (*models.MediaMeta, error)
}

type catalogService interface {
	Trending(ctx context.Context, mediaType string, loc models.Locale) []models.CatalogItem
	Search(ctx context.Context, query, mediaType string, loc models.Locale) []models.CatalogItem
}

type remoteAggregator interface {
	FetchMergedCatalog(ctx context.Context, mediaType, search, genre string, loc models.Locale) []models.CatalogItem
	FetchMeta(ctx context.Context, mediaType, id string, loc models.Locale) (*models.MediaMeta, bool)
}

var _ metaResolver = (*metadata.Service)(nil)
var _ catalogService = (*catalog.Service)(nil)
var _ remoteAggregator = (*catalog.RemoteAggregator)(nil)

// AddonHandler serves the addon protocol endpoints.
type AddonHandler struct {
	Metadata metaResolver
	Catalog  catalogService
	Remote   remoteAggregator // optional

	DefaultLang string
	DefaultTone string
}

// RegisterRoutes mounts the addon endpoints on the router.
func (h *AddonHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/manifest.json", h.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/catalog/{type}/{id}.json", h.Catalogs).Methods(http.MethodGet)
	r.HandleFunc("/catalog/{type}/{id}/{extra}.json", h.Catalogs).Methods(http.MethodGet)
	r.HandleFunc("/meta/{type}/{id}.json", h.Meta).Methods(http.MethodGet)
}

// Manifest serves the addon manifest.
func (h *AddonHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, models.DefaultManifest())
}

// Catalogs serves a catalog list. The optional {extra} segment carries
// search and genre parameters in query-string form per the addon protocol;
// plain query parameters are accepted too.
func (h *AddonHandler) Catalogs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := vars["type"]
	loc := h.locale(r)

	search := r.URL.Query().Get("search")
	genre := r.URL.Query().Get("genre")
	if extra := vars["extra"]; extra != "" {
		if vals, err := parseExtra(extra); err == nil {
			if v := vals.Get("search"); v != "" {
				search = v
			}
			if v := vals.Get("genre"); v != "" {
				genre = v
			}
		}
	}

	var items []models.CatalogItem
	if search != "" {
		items = h.Catalog.Search(r.Context(), search, mediaType, loc)
	} else {
		items = h.Catalog.Trending(r.Context(), mediaType, loc)
	}

	if h.Remote != nil {
		remote := h.Remote.FetchMergedCatalog(r.Context(), mediaType, search, genre, loc)
		items = catalog.Merge(items, remote)
	}

	metas := make([]models.MediaMeta, 0, len(items))
	for _, it := range items {
		metas = append(metas, itemToMeta(it))
	}
	writeJSON(w, map[string]any{"metas": metas})
}

// Meta serves a single localized meta record. Unresolvable IDs yield
// {"meta": null}.
func (h *AddonHandler) Meta(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := vars["type"]
	loc := h.locale(r)

	imdbID, season, episode, ok := parseMetaID(vars["id"])
	if !ok {
		writeJSON(w, map[string]any{"meta": nil})
		return
	}

	meta, err := h.Metadata.Resolve(r.Context(), imdbID, mediaType, season, episode, loc)
	if err != nil {
		if h.Remote != nil {
			if remote, found := h.Remote.FetchMeta(r.Context(), mediaType, vars["id"], loc); found {
				writeJSON(w, map[string]any{"meta": remote})
				return
			}
		}
		log.Printf("[addon] meta %s/%s unresolved: %v", mediaType, vars["id"], err)
		writeJSON(w, map[string]any{"meta": nil})
		return
	}
	writeJSON(w, map[string]any{"meta": meta})
}

// locale builds the request locale from query parameters, falling back to
// the configured defaults.
func (h *AddonHandler) locale(r *http.Request) models.Locale {
	q := r.URL.Query()
	return models.ParseLocale(q.Get("lang"), q.Get("tone"), h.DefaultLang, h.DefaultTone)
}

// parseMetaID splits "tt123", "tt123:1" or "tt123:1:2" into its parts. A
// malformed segment invalidates the whole ID.
func parseMetaID(raw string) (imdbID string, season, episode int, ok bool) {
	raw = strings.TrimSuffix(raw, ".json")
	parts := strings.Split(raw, ":")
	if len(parts) == 0 || len(parts) > 3 || !strings.HasPrefix(parts[0], "tt") {
		return "", 0, 0, false
	}
	imdbID = parts[0]
	if len(parts) > 1 {
		season, ok = parsePositive(parts[1])
		if !ok {
			return "", 0, 0, false
		}
	}
	if len(parts) > 2 {
		episode, ok = parsePositive(parts[2])
		if !ok {
			return "", 0, 0, false
		}
	}
	return imdbID, season, episode, true
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseExtra decodes the addon protocol's path-embedded extra segment,
// e.g. "search=matrix&genre=Drama".
func parseExtra(extra string) (extraValues, error) {
	vals := make(extraValues)
	for _, pair := range strings.Split(extra, "&") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		decoded, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		vals[k] = append(vals[k], decoded)
	}
	return vals, nil
}

type extraValues map[string][]string

func (v extraValues) Get(key string) string {
	if vs := v[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func itemToMeta(it models.CatalogItem) models.MediaMeta {
	return models.MediaMeta{
		ID:          metaID(it),
		Type:        it.Type,
		Name:        it.Name,
		Description: it.Description,
		Poster:      it.Poster,
		PosterShape: "poster",
		ReleaseInfo: it.Year,
	}
}

// metaID prefers the IMDB ID so the meta endpoint can resolve the item.
func metaID(it models.CatalogItem) string {
	if it.IMDBID != "" {
		return it.IMDBID
	}
	return it.ID
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[addon] failed to encode response: %v", err)
	}
}
