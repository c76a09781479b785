package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner> <activity>",
	Short: "Reset an activity so the learner can take it again",
	Long: `Reset an activity so the learner can take it again.

The reset is written straight to the progress database. A running server does
not see it: a lesson session that is open for the learner keeps its own copy
of the activity and its next save replaces the reset. While the server is up,
reset through POST /learners/{learner}/activities/{activity}/reset instead.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.progress.ResetActivity(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset %s for %s (revision %d)\n", p.ActivityID, args[0], p.Revision)
		return nil
	},
}

var migrationsCmd = &cobra.Command{
	Use:   "migrations",
	Short: "List applied schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		applied, err := d.db.Migrations(cmd.Context())
		if err != nil {
			return err
		}
		for _, v := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}
