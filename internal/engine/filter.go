package engine

import (
	"strings"

	"catalogctl/internal/model"
)

// Criteria is one filter request. The three predicates are AND-combined; the
// zero value passes every record.
type Criteria struct {
	Search     string
	Categories []string
	Status     model.StatusFilter
}

// IsZero reports whether the criteria filter nothing.
func (c Criteria) IsZero() bool {
	return c.Search == "" && len(c.Categories) == 0 && c.Status == model.StatusAll
}

// Filter returns the records matching all criteria, in input order.
// The input slice is never modified.
func Filter(records []model.Record, c Criteria) []model.Record {
	if c.IsZero() {
		out := make([]model.Record, len(records))
		copy(out, records)
		return out
	}

	catSet := toLowerSet(c.Categories)
	query := strings.ToLower(c.Search)

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if query != "" && !matchesSearch(r, query) {
			continue
		}
		if len(catSet) > 0 && !matchesCategorySet(r, catSet) {
			continue
		}
		if !MatchesStatus(r, c.Status) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MatchesSearch reports whether the query is a case-insensitive substring of
// the record's name, description, or any of its categories.
func MatchesSearch(r model.Record, query string) bool {
	if query == "" {
		return true
	}
	return matchesSearch(r, strings.ToLower(query))
}

func matchesSearch(r model.Record, lowered string) bool {
	if strings.Contains(strings.ToLower(r.Name), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), lowered) {
		return true
	}
	for _, c := range r.Categories {
		if strings.Contains(strings.ToLower(c), lowered) {
			return true
		}
	}
	return false
}

// MatchesCategories reports whether the record's categories intersect the
// given set. An empty set passes everything, it does not mean "match nothing".
func MatchesCategories(r model.Record, categories []string) bool {
	set := toLowerSet(categories)
	if len(set) == 0 {
		return true
	}
	return matchesCategorySet(r, set)
}

func matchesCategorySet(r model.Record, set map[string]bool) bool {
	for _, c := range r.Categories {
		if set[strings.ToLower(c)] {
			return true
		}
	}
	return false
}

// MatchesStatus reports whether the record's status passes the filter.
// The filter compares status only; IsActive is deliberately ignored because
// the two fields are independent in the feed.
func MatchesStatus(r model.Record, f model.StatusFilter) bool {
	switch f {
	case model.StatusOnlyActive:
		return r.Status == model.StatusActive
	case model.StatusOnlyInactive:
		return r.Status == model.StatusInactive
	}
	return true
}

func toLowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			set[strings.ToLower(item)] = true
		}
	}
	return set
}
