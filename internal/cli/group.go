package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group records by category",
		Long:  "Bucket the filtered record set by category. A record appears once per category it carries.",
		Run:   runGroup,
	}

	addFilterFlags(cmd)
	RootCmd.AddCommand(cmd)
}

func runGroup(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}

	cat, s := loadCatalog(cmd)
	defer s.Close()

	groups := engine.GroupByCategory(engine.Filter(cat.Services, criteria))

	b, _ := json.MarshalIndent(groups, "", "  ")
	fmt.Println(string(b))
}
