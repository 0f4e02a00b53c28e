package export

import (
	"encoding/json"

	"catalogctl/internal/engine"
)

// ToJSON renders rows as pretty-printed JSON. Row key order is preserved,
// so downstream consumers see fields in schema declaration order.
func ToJSON(rows []engine.Row) ([]byte, error) {
	if rows == nil {
		rows = []engine.Row{}
	}
	return json.MarshalIndent(rows, "", "  ")
}
