package jobs

import (
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool  *worker.Pool
	store worker.ProgressWriter
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, store worker.ProgressWriter) JobQueue {
	return &WorkerQueue{pool: pool, store: store}
}

func (q *WorkerQueue) EnqueueActivitySave(learnerID string, p models.ActivityProgress, onFailure func(error)) error {
	return q.pool.Submit(&worker.SaveActivityJob{
		Store:     q.store,
		LearnerID: learnerID,
		Progress:  p,
		OnFailure: onFailure,
	})
}

func (q *WorkerQueue) EnqueueStudy(learnerID string, day models.DailyStudyRecord, onFailure func(error)) error {
	return q.pool.Submit(&worker.RecordStudyJob{
		Store:     q.store,
		LearnerID: learnerID,
		Day:       day,
		OnFailure: onFailure,
	})
}
