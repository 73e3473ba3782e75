// Package dspace contains item types as returned by the DSpace REST APIs.
// DSpace 7 returns metadata as a map from qualified field name to a list of
// values, DSpace 5 and 6 as a flat list of key value pairs.
package dspace

import "strings"

// MetadataValue is a single value of a DSpace 7 metadata field.
type MetadataValue struct {
	Value string `json:"value"`
}

// Item is a DSpace 7 item, e.g. from /server/api/core/items/{uuid}.
type Item struct {
	Metadata map[string][]MetadataValue `json:"metadata"`
}

// Values returns all non-blank values of a field, in order.
func (it *Item) Values(field string) (result []string) {
	for _, v := range it.Metadata[field] {
		if s := strings.TrimSpace(v.Value); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// DiscoverResponse is a page of a /server/api/discover/search/objects query,
// stripped down to the items.
type DiscoverResponse struct {
	Embedded struct {
		SearchResult *SearchResult `json:"searchResult"`
	} `json:"_embedded"`
}

// SearchResult holds the matching objects of a discover query.
type SearchResult struct {
	Embedded struct {
		Objects []struct {
			Embedded struct {
				IndexableObject Item `json:"indexableObject"`
			} `json:"_embedded"`
		} `json:"objects"`
	} `json:"_embedded"`
}

// IsSearchResult reports whether the document was a discover page at all,
// as opposed to e.g. a single item.
func (r *DiscoverResponse) IsSearchResult() bool {
	return r.Embedded.SearchResult != nil
}

// Items returns the items contained in a discover page.
func (r *DiscoverResponse) Items() []Item {
	if r.Embedded.SearchResult == nil {
		return nil
	}
	var items []Item
	for _, obj := range r.Embedded.SearchResult.Embedded.Objects {
		items = append(items, obj.Embedded.IndexableObject)
	}
	return items
}

// LegacyMetadata is a key value pair, as used by DSpace 5 and 6.
type LegacyMetadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LegacyItem is an item from the DSpace 5 or 6 REST API, requested with
// expand=metadata.
type LegacyItem struct {
	Metadata []LegacyMetadata `json:"metadata"`
}

// Values returns all non-blank values of a field, in order.
func (it *LegacyItem) Values(field string) (result []string) {
	for _, m := range it.Metadata {
		if m.Key != field {
			continue
		}
		if s := strings.TrimSpace(m.Value); s != "" {
			result = append(result, s)
		}
	}
	return result
}
