package jobs

import "github.com/vytor/lessonflow/internal/models"

// JobQueue provides an abstraction for enqueueing background persistence.
// onFailure runs on the worker when the write fails.
type JobQueue interface {
	EnqueueActivitySave(learnerID string, p models.ActivityProgress, onFailure func(error)) error
	EnqueueStudy(learnerID string, day models.DailyStudyRecord, onFailure func(error)) error
}
