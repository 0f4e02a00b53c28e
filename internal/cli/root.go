// Package cli implements the catalogctl CLI commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
	"catalogctl/internal/export"
	"catalogctl/internal/model"
	"catalogctl/internal/store"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Explore and reshape a service catalog",
	Long: "Fetch a service-catalog feed, filter and reshape its records with a " +
		"field projection or a user-defined schema, and export the result as JSON or CSV.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Cache path (default: $CATALOGCTL_DB or ~/.catalogctl/cache.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or csv")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("CATALOGCTL_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".catalogctl", "cache.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	var verr *engine.ValidationError
	var eerr *engine.EvaluationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(os.Stderr, "error: %s\n", verr.Msg)
	case errors.As(err, &eerr):
		fmt.Fprintf(os.Stderr, "error: %s: fix your schema and retry (the previous result is kept)\n", eerr.Error())
	default:
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	}
	os.Exit(1)
}

// addFilterFlags registers the shared filter flags used by every command
// that reads the catalog.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Case-insensitive substring match on name, description, or categories")
	cmd.Flags().StringP("categories", "c", "", "Filter by categories (comma-separated, any match)")
	cmd.Flags().String("status", "all", "Filter by status: all, active, or inactive")
}

func criteriaFromFlags(cmd *cobra.Command) (engine.Criteria, error) {
	search, _ := cmd.Flags().GetString("search")
	catsStr, _ := cmd.Flags().GetString("categories")
	statusStr, _ := cmd.Flags().GetString("status")

	status, ok := model.ParseStatusFilter(statusStr)
	if !ok {
		return engine.Criteria{}, fmt.Errorf("invalid status %q (use all, active, or inactive)", statusStr)
	}

	var cats []string
	for _, c := range strings.Split(catsStr, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cats = append(cats, c)
		}
	}

	return engine.Criteria{Search: search, Categories: cats, Status: status}, nil
}

// loadCatalog opens the cache and returns the latest catalog.
func loadCatalog(cmd *cobra.Command) (*model.Catalog, *store.SQLiteStore) {
	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	cat, _, err := s.LatestCatalog(cmd.Context())
	if err != nil {
		s.Close()
		exitErr("load catalog", err)
	}
	return cat, s
}

// printRows writes rows in the selected output format.
func printRows(rows []engine.Row) {
	if formatFlag == "csv" {
		fmt.Println(export.ToDelimited(rows))
		return
	}
	b, err := export.ToJSON(rows)
	if err != nil {
		exitErr("encode result", err)
	}
	fmt.Println(string(b))
}

func recordRows(records []model.Record) []engine.Row {
	rows := make([]engine.Row, len(records))
	for i, r := range records {
		rows[i] = engine.RecordRow(r)
	}
	return rows
}
