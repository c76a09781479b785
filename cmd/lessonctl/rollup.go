package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/lessonflow/internal/config"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/services"
)

var rollupCmd = &cobra.Command{
	Use:   "rollup <learner>",
	Short: "Print a learner's progress rollup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		today := time.Now()
		if v, _ := cmd.Flags().GetString("today"); v != "" {
			if today, err = time.Parse(models.DateLayout, v); err != nil {
				return fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
			}
		}
		progress := d.progress
		if v, _ := cmd.Flags().GetString("week-start"); v != "" {
			day, ok := config.ParseWeekday(v)
			if !ok {
				return fmt.Errorf("unknown weekday %q", v)
			}
			progress = services.NewProgressService(d.source, d.store, day, nil)
		}

		r, err := progress.Rollup(cmd.Context(), args[0], today)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

func init() {
	rollupCmd.Flags().String("today", "", "Date to compute the rollup for (YYYY-MM-DD, default: now)")
	rollupCmd.Flags().String("week-start", "", "First day of the week (default: WEEK_START)")
}
