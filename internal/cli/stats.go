package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catalogctl/internal/engine"
	"catalogctl/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and cache statistics",
		Run:   runStats,
	}

	addFilterFlags(cmd)
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		exitErr("parse flags", err)
	}

	cat, s := loadCatalog(cmd)
	defer s.Close()

	cacheStats, err := s.CacheStats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("cache stats", err)
	}

	out := struct {
		Catalog engine.Stats      `json:"catalog"`
		Cache   *store.CacheStats `json:"cache"`
	}{
		Catalog: engine.ComputeStats(engine.Filter(cat.Services, criteria)),
		Cache:   cacheStats,
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
