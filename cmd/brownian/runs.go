package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/brownian/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the IDs of recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, release, err := openRuns(cmd)
		if err != nil {
			return err
		}
		defer release()

		ids, err := mgr.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the species counts of every snapshot in a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, release, err := openRuns(cmd)
		if err != nil {
			return err
		}
		defer release()

		out := cmd.OutOrStdout()
		if last, _ := cmd.Flags().GetBool("last"); last {
			snap, err := mgr.Latest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		snaps, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			counts := tui.Counts(snap.State)
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Fprintf(out, "%4d t=%-8.4g", snap.Step, snap.Time)
			for _, name := range names {
				fmt.Fprintf(out, " %s=%d", name, counts[name])
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Delete recorded runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, release, err := openRuns(cmd)
		if err != nil {
			return err
		}
		defer release()

		for _, id := range args {
			if err := mgr.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsShowCmd, runsDeleteCmd} {
		addStoreFlags(c)
		runsCmd.AddCommand(c)
	}
	runsShowCmd.Flags().Bool("last", false, "Print only the final snapshot as JSON")
	rootCmd.AddCommand(runsCmd)
}
