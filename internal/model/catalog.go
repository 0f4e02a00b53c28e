package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Catalog is the loaded record set plus the category vocabulary.
// It is replaced wholesale on reload, never mutated in place.
type Catalog struct {
	Services   []Record `json:"services"`
	Categories []string `json:"categories"`
}

// ParseCatalog decodes a catalog feed payload. Two shapes are accepted:
// an object {services: [...], categories?: [...]} or a bare record array.
// When the vocabulary is absent it is derived as the union of all record
// categories in first-seen order.
func ParseCatalog(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty catalog payload")
	}

	var cat Catalog
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &cat.Services); err != nil {
			return nil, fmt.Errorf("parse catalog array: %w", err)
		}
	case '{':
		var envelope struct {
			Services   []Record `json:"services"`
			Categories []string `json:"categories"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("parse catalog object: %w", err)
		}
		if envelope.Services == nil {
			return nil, fmt.Errorf("catalog object has no services array")
		}
		cat.Services = envelope.Services
		cat.Categories = envelope.Categories
	default:
		return nil, fmt.Errorf("catalog payload is neither an object nor an array")
	}

	if cat.Categories == nil {
		cat.Categories = deriveCategories(cat.Services)
	}
	return &cat, nil
}

// deriveCategories unions record categories, preserving first-seen order.
func deriveCategories(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		for _, c := range r.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
