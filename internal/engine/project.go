package engine

import "catalogctl/internal/model"

// Project restricts each record to exactly the requested keys, in the order
// given. Unknown keys are silently skipped so stale field lists keep working
// across catalog schema drift. Values are shared, not deep-copied.
//
// An empty key list is a caller-side validation error; Project itself just
// emits empty rows for it.
func Project(records []model.Record, keys []string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := NewRow()
		for _, key := range keys {
			if v, ok := rec.Field(key); ok {
				row.Set(key, v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
