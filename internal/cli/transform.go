package cli

import (
	"os"

	"github.com/spf13/cobra"

	"catalogctl/internal/schema"
	"catalogctl/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "transform [expression]",
		Short: "Reshape records with a user-defined schema",
		Long: "Evaluate a transformation schema against the filtered record set. " +
			"Pass a schema file with --schema, or a whole-set expression inline:\n\n" +
			"  catalogctl transform \"project(records, ['name','id'])\"\n" +
			"  catalogctl transform --schema reshape.yaml\n\n" +
			"A successful transform replaces the stored result; a failed one keeps it.",
		Run: runTransform,
	}

	cmd.Flags().String("schema", "", "Path to a YAML/JSON schema file")
	cmd.Flags().Duration("timeout", schema.DefaultTimeout, "Evaluation time budget")
	addFilterFlags(cmd)
	RootCmd.AddCommand(cmd)
}

func runTransform(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	src := schemaSource(cmd, args)

	cat, s := loadCatalog(cmd)
	defer s.Close()

	sess := session.New()
	sess.SetCatalog(cat)
	sess.SetCriteria(criteria)

	rows, err := sess.Transform(src, schema.Options{Timeout: timeout})
	if err != nil {
		exitErr("transform", err)
	}

	if _, err := s.SaveResult(cmd.Context(), src, rows); err != nil {
		exitErr("save result", err)
	}
	printRows(rows)
}

// schemaSource resolves the schema text from --schema or the positional
// argument. An inline expression is wrapped as a whole-set schema.
func schemaSource(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("schema")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			exitErr("read schema", err)
		}
		return string(data)
	}
	if len(args) > 0 {
		return "= " + args[0]
	}
	return ""
}
