package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catalogctl/internal/fetch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Fetch a catalog feed and cache it",
		Long:  "Download a service-catalog JSON feed, validate it, and store it as a new snapshot in the local cache.",
		Args:  cobra.ExactArgs(1),
		Run:   runFetch,
	}

	RootCmd.AddCommand(cmd)
}

func runFetch(cmd *cobra.Command, args []string) {
	url := args[0]

	cat, err := fetch.NewClient().Fetch(cmd.Context(), url)
	if err != nil {
		exitErr("fetch catalog", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	defer s.Close()

	snap, err := s.SaveSnapshot(cmd.Context(), url, cat)
	if err != nil {
		exitErr("save snapshot", err)
	}

	b, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Println(string(b))
}
