package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"catalogctl/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Restrict records to a fixed set of fields",
		Long: "Project the filtered record set onto the given fields, in the given order. " +
			"Unknown field names are skipped.",
		Run: runProject,
	}

	cmd.Flags().String("fields", "", "Comma-separated field names (e.g. name,id,url)")
	addFilterFlags(cmd)
	RootCmd.AddCommand(cmd)
}

func runProject(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}

	fieldsStr, _ := cmd.Flags().GetString("fields")
	var keys []string
	for _, k := range strings.Split(fieldsStr, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}

	cat, s := loadCatalog(cmd)
	defer s.Close()

	sess := session.New()
	sess.SetCatalog(cat)
	sess.SetCriteria(criteria)

	rows, err := sess.Project(keys)
	if err != nil {
		exitErr("project", err)
	}

	if _, err := s.SaveResult(cmd.Context(), "project: "+fieldsStr, rows); err != nil {
		exitErr("save result", err)
	}
	printRows(rows)
}
