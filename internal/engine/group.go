package engine

import "catalogctl/internal/model"

// Group is one category bucket produced by GroupByCategory.
type Group struct {
	Category string         `json:"category"`
	Records  []model.Record `json:"records"`
}

// GroupByCategory buckets records by each of their categories, in first-seen
// category order. A record with N categories appears in N groups; a record
// with no categories appears in none.
func GroupByCategory(records []model.Record) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		for _, c := range r.Categories {
			i, ok := index[c]
			if !ok {
				i = len(groups)
				index[c] = i
				groups = append(groups, Group{Category: c})
			}
			groups[i].Records = append(groups[i].Records, r)
		}
	}
	return groups
}
