package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueActivitySave(learnerID string, p models.ActivityProgress, onFailure func(error)) error {
	args := m.Called(learnerID, p, onFailure)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueStudy(learnerID string, day models.DailyStudyRecord, onFailure func(error)) error {
	args := m.Called(learnerID, day, onFailure)
	return args.Error(0)
}
