package engine

import "catalogctl/internal/model"

// Stats holds aggregate counts over a record set. Active counts IsActive,
// not Status, matching the feed's own dashboard numbers.
type Stats struct {
	Total              int `json:"total"`
	Active             int `json:"active"`
	WithURL            int `json:"withUrl"`
	DistinctCategories int `json:"distinctCategoryCount"`
}

// ComputeStats reduces a record set to its aggregate counts.
func ComputeStats(records []model.Record) Stats {
	st := Stats{Total: len(records)}
	categories := make(map[string]bool)
	for _, r := range records {
		if r.IsActive {
			st.Active++
		}
		if r.URL != "" {
			st.WithURL++
		}
		for _, c := range r.Categories {
			categories[c] = true
		}
	}
	st.DistinctCategories = len(categories)
	return st
}
