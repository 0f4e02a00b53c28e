package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search catalog records by keyword",
		Long:  "Search record names, descriptions, and categories for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("categories", "c", "", "Also filter by categories (comma-separated)")
	cmd.Flags().String("status", "all", "Also filter by status: all, active, or inactive")
	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}
	criteria.Search = strings.Join(args, " ")

	cat, s := loadCatalog(cmd)
	defer s.Close()

	records := engine.Filter(cat.Services, criteria)
	printRows(recordRows(records))
}
