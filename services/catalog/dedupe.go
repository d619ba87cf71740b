package catalog

import "lingostream/models"

// Merge deduplicates priority-ordered source lists into a single ranked
// list, keyed by each item's identity key. First occurrence fixes position
// and wins field conflicts; later occurrences only enrich: they fill fields
// the existing entry left empty and union the external-ID maps. Running the
// same inputs twice yields the same output.
func Merge(lists ...[]models.CatalogItem) []models.CatalogItem {
	var order []string
	byKey := make(map[string]models.CatalogItem)

	for _, list := range lists {
		for _, it := range list {
			key := it.IdentityKey()
			if key == "" {
				continue
			}
			existing, ok := byKey[key]
			if !ok {
				order = append(order, key)
				byKey[key] = it
				continue
			}
			byKey[key] = enrich(existing, it)
		}
	}

	out := make([]models.CatalogItem, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// enrich fills the gaps in base with fields from next. Populated fields in
// base are never overwritten, so source priority order decides conflicts.
func enrich(base, next models.CatalogItem) models.CatalogItem {
	if base.ID == "" {
		base.ID = next.ID
	}
	if base.IMDBID == "" {
		base.IMDBID = next.IMDBID
	}
	if base.Type == "" {
		base.Type = next.Type
	}
	if base.Name == "" {
		base.Name = next.Name
	}
	if base.Description == "" {
		base.Description = next.Description
	}
	if base.Poster == "" {
		base.Poster = next.Poster
	}
	if base.Year == "" {
		base.Year = next.Year
	}
	if len(base.Genres) == 0 {
		base.Genres = next.Genres
	}
	if base.OriginalLanguage == "" {
		base.OriginalLanguage = next.OriginalLanguage
	}
	if base.Popularity == 0 {
		base.Popularity = next.Popularity
	}
	if base.Rating == 0 {
		base.Rating = next.Rating
	}
	if base.Runtime == "" {
		base.Runtime = next.Runtime
	}
	if len(base.Cast) == 0 {
		base.Cast = next.Cast
	}
	if len(next.ExternalIDs) > 0 {
		merged := make(map[string]string, len(base.ExternalIDs)+len(next.ExternalIDs))
		for k, v := range next.ExternalIDs {
			merged[k] = v
		}
		for k, v := range base.ExternalIDs {
			merged[k] = v
		}
		base.ExternalIDs = merged
	}
	return base
}
