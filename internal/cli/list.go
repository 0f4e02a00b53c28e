package cli

import (
	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		Run:   runList,
	}

	addFilterFlags(cmd)
	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}

	cat, s := loadCatalog(cmd)
	defer s.Close()

	records := engine.Filter(cat.Services, criteria)
	printRows(recordRows(records))
}
