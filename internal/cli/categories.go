package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the catalog's category vocabulary",
		Run:   runCategories,
	}

	RootCmd.AddCommand(cmd)
}

func runCategories(cmd *cobra.Command, args []string) {
	cat, s := loadCatalog(cmd)
	defer s.Close()

	b, _ := json.MarshalIndent(cat.Categories, "", "  ")
	fmt.Println(string(b))
}
