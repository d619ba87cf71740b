package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"lingostream/internal/memcache"
	"lingostream/models"
)

// remoteCatalogTTL bounds how long a merged upstream catalog is served
// without re-fetching.
const remoteCatalogTTL = 5 * time.Minute

// remoteManifest is the subset of an upstream addon manifest the aggregator
// needs to enumerate its catalogs.
type remoteManifest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Catalogs []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"catalogs"`
}

type remoteAddon struct {
	base     string
	manifest *remoteManifest
}

// RemoteAggregator merges catalogs and metas from configured upstream addon
// URLs. Manifests are refreshed on a background loop so catalog additions on
// the upstream side get picked up without a restart.
type RemoteAggregator struct {
	urls       []string
	httpc      *http.Client
	translator Localizer
	refreshGap time.Duration
	cache      *memcache.Cache
	debug      bool

	mu     sync.RWMutex
	addons []remoteAddon

	runMu   sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRemoteAggregator wires the upstream aggregator. urls holds manifest
// URLs; entries ending in /manifest.json are normalized to the addon root.
func NewRemoteAggregator(urls []string, httpc *http.Client, translator Localizer, refreshGap time.Duration, debug bool) *RemoteAggregator {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if refreshGap < time.Minute {
		refreshGap = 5 * time.Minute
	}
	bases := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		u = strings.TrimSuffix(u, "/manifest.json")
		bases = append(bases, strings.TrimSuffix(u, "/"))
	}
	return &RemoteAggregator{
		urls:       bases,
		httpc:      httpc,
		translator: translator,
		refreshGap: refreshGap,
		cache:      memcache.New(200, remoteCatalogTTL, debug),
		debug:      debug,
	}
}

// Start fetches the upstream manifests and begins the refresh loop.
func (a *RemoteAggregator) Start(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.running || len(a.urls) == 0 {
		return nil
	}

	a.ctx, a.cancel = context.WithCancel(ctx)
	a.running = true

	a.refresh(a.ctx)

	a.wg.Add(1)
	go a.refreshLoop()

	log.Printf("[remote] aggregating %d upstream addon(s)", len(a.urls))
	return nil
}

// Stop cancels the refresh loop and waits for it to finish.
func (a *RemoteAggregator) Stop(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if !a.running {
		return nil
	}
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Println("[remote] aggregator stopped (timeout)")
	}

	a.running = false
	return nil
}

func (a *RemoteAggregator) refreshLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.refreshGap)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.refresh(a.ctx)
		}
	}
}

// refresh re-fetches every upstream manifest. Upstreams that fail keep their
// previous manifest so a transient outage does not drop their catalogs.
func (a *RemoteAggregator) refresh(ctx context.Context) {
	a.mu.RLock()
	prev := make(map[string]*remoteManifest, len(a.addons))
	for _, ad := range a.addons {
		prev[ad.base] = ad.manifest
	}
	a.mu.RUnlock()

	addons := make([]remoteAddon, 0, len(a.urls))
	for _, base := range a.urls {
		man, err := a.fetchManifest(ctx, base)
		if err != nil {
			log.Printf("[remote] manifest fetch failed for %s: %v", base, err)
			if old := prev[base]; old != nil {
				addons = append(addons, remoteAddon{base: base, manifest: old})
			}
			continue
		}
		addons = append(addons, remoteAddon{base: base, manifest: man})
	}

	a.mu.Lock()
	a.addons = addons
	a.mu.Unlock()
}

func (a *RemoteAggregator) fetchManifest(ctx context.Context, base string) (*remoteManifest, error) {
	var man remoteManifest
	if err := a.getJSON(ctx, base+"/manifest.json", &man); err != nil {
		return nil, err
	}
	return &man, nil
}

// FetchMergedCatalog queries every upstream catalog matching the media type,
// optionally with a search query and genre filter, and merges the results in
// upstream order.
func (a *RemoteAggregator) FetchMergedCatalog(ctx context.Context, mediaType, search, genre string, loc models.Locale) []models.CatalogItem {
	cacheID := fmt.Sprintf("remote:catalog:%s|%s|%s|%s", mediaType, strings.ToLower(search), genre, loc.Language)
	if v, ok := a.cache.Get(cacheID); ok {
		if items, ok := v.([]models.CatalogItem); ok {
			return items
		}
	}

	a.mu.RLock()
	addons := a.addons
	a.mu.RUnlock()

	var lists [][]models.CatalogItem
	for _, ad := range addons {
		for _, cat := range ad.manifest.Catalogs {
			if cat.Type != mediaType {
				continue
			}
			endpoint := catalogURL(ad.base, mediaType, cat.ID, search, genre)
			var resp struct {
				Metas []remoteMeta `json:"metas"`
			}
			if err := a.getJSON(ctx, endpoint, &resp); err != nil {
				if a.debug {
					log.Printf("[remote] catalog %s/%s from %s failed: %v", mediaType, cat.ID, ad.base, err)
				}
				continue
			}
			items := make([]models.CatalogItem, 0, len(resp.Metas))
			for _, m := range resp.Metas {
				items = append(items, m.toItem(ad.manifest.ID, mediaType))
			}
			lists = append(lists, items)
		}
	}

	merged := Merge(lists...)
	if genre != "" {
		merged = filterByGenre(merged, genre)
	}
	items := a.localize(ctx, merged, loc)
	a.cache.Set(cacheID, items)
	return items
}

// FetchMeta asks each upstream in turn for a full meta record, localizes it
// and caches the result per (type, id, language).
func (a *RemoteAggregator) FetchMeta(ctx context.Context, mediaType, id string, loc models.Locale) (*models.MediaMeta, bool) {
	cacheID := fmt.Sprintf("remote:meta:%s:%s|%s", mediaType, id, loc.Language)
	if v, ok := a.cache.Get(cacheID); ok {
		if meta, ok := v.(*models.MediaMeta); ok {
			return meta, true
		}
	}

	a.mu.RLock()
	addons := a.addons
	a.mu.RUnlock()

	for _, ad := range addons {
		endpoint := fmt.Sprintf("%s/meta/%s/%s.json", ad.base, mediaType, url.PathEscape(id))
		var resp struct {
			Meta *models.MediaMeta `json:"meta"`
		}
		if err := a.getJSON(ctx, endpoint, &resp); err != nil || resp.Meta == nil {
			continue
		}
		meta := resp.Meta
		if a.translator != nil && !loc.IsCanonical() {
			if strings.TrimSpace(meta.Name) != "" {
				meta.Name = a.translator.Localize(ctx, meta.Name, loc.Language, loc.Tone)
			}
			if strings.TrimSpace(meta.Description) != "" {
				meta.Description = a.translator.Localize(ctx, meta.Description, loc.Language, loc.Tone)
			}
		}
		a.cache.Set(cacheID, meta)
		return meta, true
	}
	return nil, false
}

// localize pushes item names and descriptions through the translator.
func (a *RemoteAggregator) localize(ctx context.Context, items []models.CatalogItem, loc models.Locale) []models.CatalogItem {
	if a.translator == nil || loc.IsCanonical() {
		return items
	}
	for i := range items {
		if strings.TrimSpace(items[i].Name) != "" {
			items[i].Name = a.translator.Localize(ctx, items[i].Name, loc.Language, loc.Tone)
		}
		if strings.TrimSpace(items[i].Description) != "" {
			items[i].Description = a.translator.Localize(ctx, items[i].Description, loc.Language, loc.Tone)
		}
	}
	return items
}

func (a *RemoteAggregator) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// remoteMeta is the loose shape upstream addons serve in catalog responses.
type remoteMeta struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Poster      string   `json:"poster"`
	ReleaseInfo string   `json:"releaseInfo"`
	Genres      []string `json:"genres"`
	IMDBRating  string   `json:"imdbRating"`
}

func (m remoteMeta) toItem(sourceID, mediaType string) models.CatalogItem {
	imdbID := ""
	if strings.HasPrefix(m.ID, "tt") {
		imdbID = m.ID
	}
	itemType := m.Type
	if itemType == "" {
		itemType = mediaType
	}
	return models.CatalogItem{
		Source:      "remote:" + sourceID,
		ID:          m.ID,
		IMDBID:      imdbID,
		Type:        itemType,
		Name:        m.Name,
		Description: m.Description,
		Poster:      m.Poster,
		Year:        m.ReleaseInfo,
		Genres:      m.Genres,
	}
}

func catalogURL(base, mediaType, catalogID, search, genre string) string {
	var extra []string
	if search != "" {
		extra = append(extra, "search="+url.QueryEscape(search))
	}
	if genre != "" {
		extra = append(extra, "genre="+url.QueryEscape(genre))
	}
	path := fmt.Sprintf("%s/catalog/%s/%s", base, mediaType, url.PathEscape(catalogID))
	if len(extra) > 0 {
		return path + "/" + strings.Join(extra, "&") + ".json"
	}
	return path + ".json"
}

func filterByGenre(items []models.CatalogItem, genre string) []models.CatalogItem {
	out := items[:0]
	for _, it := range items {
		if len(it.Genres) == 0 {
			out = append(out, it)
			continue
		}
		for _, g := range it.Genres {
			if strings.EqualFold(g, genre) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
