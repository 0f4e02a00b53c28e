// Package engine implements the pure record transformation core: filtering,
// projection, grouping, stats, and the row shape shared by all of them.
// Every function is a pure function of its arguments; the source record set
// is never mutated.
package engine

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"catalogctl/internal/model"
)

// Row is one output record of a projection or schema evaluation. Schema-driven
// output has no fixed shape, so rows are ordered string→value maps: key order
// is declaration order and survives JSON marshalling.
type Row = *orderedmap.OrderedMap[string, any]

// NewRow returns an empty row.
func NewRow() Row {
	return orderedmap.New[string, any]()
}

// RowKeys returns a row's keys in order.
func RowKeys(r Row) []string {
	keys := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// RecordRow maps a full record to a row with the canonical field order.
// Slice values are shared with the record, not copied.
func RecordRow(rec model.Record) Row {
	row := NewRow()
	for _, name := range model.FieldNames {
		v, _ := rec.Field(name)
		row.Set(name, v)
	}
	return row
}
