package worker

import (
	"context"
	"errors"

	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository"
)

// SaveActivityJob writes one activity progress record. Records carry their
// revision, so jobs finishing out of order cannot regress stored progress;
// the older write is dropped.
type SaveActivityJob struct {
	Store     ProgressWriter
	LearnerID string
	Progress  models.ActivityProgress
	OnFailure func(error)
}

func (j *SaveActivityJob) Name() string { return "save_activity" }

func (j *SaveActivityJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithLearner(j.LearnerID)
	log.Debug("saving activity %s revision=%d status=%s", j.Progress.ActivityID, j.Progress.Revision, j.Progress.Status)

	err := j.Store.SaveActivity(ctx, j.LearnerID, j.Progress)
	var stale *repository.StaleRevisionError
	if errors.As(err, &stale) {
		log.Debug("activity %s revision %d dropped, stored %d", j.Progress.ActivityID, stale.Revision, stale.Stored)
		return nil
	}
	if err != nil && j.OnFailure != nil {
		j.OnFailure(err)
	}
	return err
}

// RecordStudyJob adds minutes and completions to a learner's study log.
type RecordStudyJob struct {
	Store     ProgressWriter
	LearnerID string
	Day       models.DailyStudyRecord
	OnFailure func(error)
}

func (j *RecordStudyJob) Name() string { return "record_study" }

func (j *RecordStudyJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithLearner(j.LearnerID)
	log.Debug("recording study for %s: minutes=%d", j.Day.Date, j.Day.MinutesStudied)

	err := j.Store.RecordStudy(ctx, j.LearnerID, j.Day)
	if err != nil && j.OnFailure != nil {
		j.OnFailure(err)
	}
	return err
}
