// Package model defines the catalog data types.
package model

// Status is a record's lifecycle state as published by the catalog feed.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// StatusFilter selects records by status. The zero value passes everything.
type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusOnlyActive
	StatusOnlyInactive
)

// ParseStatusFilter maps a CLI flag value to a StatusFilter.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch s {
	case "", "all":
		return StatusAll, true
	case "active":
		return StatusOnlyActive, true
	case "inactive":
		return StatusOnlyInactive, true
	}
	return StatusAll, false
}

// Record is one catalog entry.
//
// Status and IsActive both come from the feed and are known to disagree for
// some records. They are independent fields: keep both verbatim, never
// reconcile one from the other.
type Record struct {
	Name          string   `json:"name"`
	ID            string   `json:"id"`
	Categories    []string `json:"categories"`
	Description   string   `json:"description"`
	Status        Status   `json:"status"`
	IsActive      bool     `json:"isActive"`
	InstitutionID string   `json:"institutionId"`
	Icon          string   `json:"icon,omitempty"`
	URL           string   `json:"url,omitempty"`
}

// FieldNames lists the record fields in their canonical order, using the
// same names the feed (and schema rules) use.
var FieldNames = []string{
	"name", "id", "categories", "description", "status",
	"isActive", "institutionId", "icon", "url",
}

// Field returns the value of a record field by its feed name.
// The categories slice is returned by reference, not copied.
func (r Record) Field(name string) (any, bool) {
	switch name {
	case "name":
		return r.Name, true
	case "id":
		return r.ID, true
	case "categories":
		return r.Categories, true
	case "description":
		return r.Description, true
	case "status":
		return string(r.Status), true
	case "isActive":
		return r.IsActive, true
	case "institutionId":
		return r.InstitutionID, true
	case "icon":
		return r.Icon, true
	case "url":
		return r.URL, true
	}
	return nil, false
}
