package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalogctl/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a catalog from a local JSON file",
		Long:  "Load a service-catalog JSON file (object with a services array, or a bare record array) and store it as a new snapshot.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		exitErr("read file", err)
	}

	cat, err := model.ParseCatalog(data)
	if err != nil {
		exitErr("parse catalog", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	defer s.Close()

	snap, err := s.SaveSnapshot(cmd.Context(), "file://"+path, cat)
	if err != nil {
		exitErr("save snapshot", err)
	}

	b, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Println(string(b))
}
