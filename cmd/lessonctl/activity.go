package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/lessonflow/internal/activity"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/models"
)

type activityReport struct {
	Activity     *models.Activity         `json:"activity"`
	ContentError string                   `json:"content_error,omitempty"`
	Progress     *models.ActivityProgress `json:"progress,omitempty"`
}

var activityCmd = &cobra.Command{
	Use:   "activity <activity>",
	Short: "Fetch an activity from the content API and check it",
	Long: `Fetches one activity document from the content API and reports whether it can
be taken. With --learner the stored progress of that learner is included.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		a, err := d.source.Activity(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report := activityReport{Activity: a}
		if err := activity.Validate(*a); err != nil {
			report.ContentError = apperrors.AsAppError(err).Message
		}

		if learnerID, _ := cmd.Flags().GetString("learner"); learnerID != "" {
			report.Progress, err = d.store.LoadActivity(cmd.Context(), learnerID, a.ID)
			if err != nil {
				return err
			}
		}
		return printJSON(cmd, report)
	},
}

func init() {
	activityCmd.Flags().String("learner", "", "Include this learner's stored progress")
}
