// Package export serializes transform results for file or clipboard
// consumers.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"catalogctl/internal/engine"
)

// ToDelimited renders rows as comma-delimited text. The header is the first
// row's keys in order, and every row is rendered against that same header:
// missing keys become empty cells, keys the first row didn't have are
// dropped. An empty input produces an empty string.
//
// encoding/csv is deliberately not used here: array cells must always be
// quoted (joined with "; ") even when nothing in them forces quoting, which
// the standard writer will not do.
func ToDelimited(rows []engine.Row) string {
	if len(rows) == 0 {
		return ""
	}

	header := engine.RowKeys(rows[0])

	var b strings.Builder
	for i, key := range header {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(cell(key))
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, key := range header {
			if i > 0 {
				b.WriteByte(',')
			}
			v, _ := row.Get(key)
			b.WriteString(cell(v))
		}
	}
	return b.String()
}

// cell renders one value. Arrays become a single quoted field joined with
// "; "; strings containing a quote get the quote doubled and the field
// quoted; other scalars use their natural form, unquoted.
func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []string:
		return quote(strings.Join(v, "; "))
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = scalar(e)
		}
		return quote(strings.Join(parts, "; "))
	}
	s := scalar(v)
	if strings.ContainsAny(s, "\",\n") {
		return quote(s)
	}
	return s
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	// Nested shapes (stats objects, record sets) serialize as JSON.
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
