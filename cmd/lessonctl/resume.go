package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <learner> [lesson]",
	Short: "Show where a learner will resume a lesson",
	Long:  "Prints the stored resume snapshot of one lesson, or of every lesson the learner has started.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		learnerID := args[0]
		if len(args) == 1 {
			snaps, err := d.store.ListSequences(cmd.Context(), learnerID)
			if err != nil {
				return err
			}
			return printJSON(cmd, snaps)
		}

		snap, err := d.store.LoadSequence(cmd.Context(), learnerID, args[1])
		if err != nil {
			return err
		}
		if snap == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has not started %s\n", learnerID, args[1])
			return nil
		}
		return printJSON(cmd, snap)
	},
}
