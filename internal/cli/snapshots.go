package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List cached catalog snapshots",
		Run:   runSnapshots,
	}
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a cached snapshot",
		Args:  cobra.ExactArgs(1),
		Run:   runSnapshotsRm,
	}
	cmd.AddCommand(rmCmd)

	RootCmd.AddCommand(cmd)
}

func runSnapshots(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	defer s.Close()

	snaps, err := s.ListSnapshots(cmd.Context(), limit)
	if err != nil {
		exitErr("list snapshots", err)
	}
	if len(snaps) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(snaps, "", "  ")
	fmt.Println(string(b))
}

func runSnapshotsRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open cache", err)
	}
	defer s.Close()

	if err := s.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
		exitErr("delete snapshot", err)
	}
	fmt.Printf("deleted %s\n", args[0])
}
