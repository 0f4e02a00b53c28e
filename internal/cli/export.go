package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
	"catalogctl/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the last transform result",
		Long:  "Print the most recent project/transform result as JSON (default) or CSV.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	defer s.Close()

	res, err := s.LastResult(cmd.Context())
	if err != nil {
		exitErr("load result", err)
	}
	if res == nil {
		exitErr("export", engine.Validationf("no result to export: run project or transform first"))
	}

	if formatFlag == "json" {
		// The payload is already pretty-safe JSON with stable key order;
		// re-indent it for the terminal.
		var pretty json.RawMessage = res.Payload
		b, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(b))
		return
	}

	rows, err := decodeRows(res.Payload)
	if err != nil {
		exitErr("decode result", err)
	}
	fmt.Println(export.ToDelimited(rows))
}

// decodeRows reconstructs ordered rows from a stored result payload.
// Row.UnmarshalJSON preserves per-object key order, which a plain map
// decode would destroy.
func decodeRows(payload []byte) ([]engine.Row, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	rows := make([]engine.Row, 0, len(raw))
	for _, obj := range raw {
		row := engine.NewRow()
		if err := row.UnmarshalJSON(obj); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
