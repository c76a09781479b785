package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository"
	"github.com/vytor/lessonflow/internal/testutil/mocks"
	"github.com/vytor/lessonflow/internal/worker"
)

type recordJob struct {
	mu   *sync.Mutex
	seen *[]int
	n    int
	gate chan struct{}
}

func (j *recordJob) Name() string { return "record" }

func (j *recordJob) Run(context.Context) error {
	if j.gate != nil {
		<-j.gate
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	*j.seen = append(*j.seen, j.n)
	return nil
}

func TestPool_SingleWorkerRunsInOrder(t *testing.T) {
	p := worker.NewPool(1, 16)
	p.Start(context.Background())

	var mu sync.Mutex
	var seen []int
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(&recordJob{mu: &mu, seen: &seen, n: i}))
	}
	p.Stop()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
}

func TestPool_QueueFullAndStopped(t *testing.T) {
	p := worker.NewPool(1, 1)
	p.Start(context.Background())

	var mu sync.Mutex
	var seen []int
	gate := make(chan struct{})
	blocker := &recordJob{mu: &mu, seen: &seen, n: 0, gate: gate}
	require.NoError(t, p.Submit(blocker))

	// Fill the queue while the worker is blocked; one of these must be refused.
	var full error
	for i := 1; i <= 3 && full == nil; i++ {
		full = p.Submit(&recordJob{mu: &mu, seen: &seen, n: i})
	}
	assert.ErrorIs(t, full, worker.ErrQueueFull)

	close(gate)
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(&recordJob{mu: &mu, seen: &seen}), worker.ErrPoolStopped)
	assert.Equal(t, 0, p.QueueSize())
}

func TestSaveActivityJob_ReportsFailure(t *testing.T) {
	store := new(mocks.MockProgressStore)
	p := models.ActivityProgress{ActivityID: "q1", Revision: 2}
	store.On("SaveActivity", mock.Anything, "ana", p).Return(errors.New("disk full"))

	var got error
	job := &worker.SaveActivityJob{Store: store, LearnerID: "ana", Progress: p, OnFailure: func(err error) { got = err }}

	assert.Error(t, job.Run(context.Background()))
	assert.EqualError(t, got, "disk full")
}

func TestSaveActivityJob_OlderRevisionIsDropped(t *testing.T) {
	store := new(mocks.MockProgressStore)
	p := models.ActivityProgress{ActivityID: "q1", Revision: 2}
	store.On("SaveActivity", mock.Anything, "ana", p).
		Return(&repository.StaleRevisionError{Key: "activity/ana/q1", Revision: 2, Stored: 3})

	called := false
	job := &worker.SaveActivityJob{Store: store, LearnerID: "ana", Progress: p, OnFailure: func(error) { called = true }}

	assert.NoError(t, job.Run(context.Background()))
	assert.False(t, called)
}

func TestRecordStudyJob(t *testing.T) {
	store := new(mocks.MockProgressStore)
	day := models.DailyStudyRecord{Date: "2026-10-17", MinutesStudied: 3}
	store.On("RecordStudy", mock.Anything, "ana", day).Return(nil)

	called := false
	job := &worker.RecordStudyJob{Store: store, LearnerID: "ana", Day: day, OnFailure: func(error) { called = true }}

	assert.NoError(t, job.Run(context.Background()))
	assert.False(t, called)
	store.AssertExpectations(t)
}
