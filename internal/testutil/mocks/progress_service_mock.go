package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/models"
)

// MockProgressService is a mock implementation of services.ProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Rollup(ctx context.Context, learnerID string, today time.Time) (*models.ProgressRollup, error) {
	args := m.Called(ctx, learnerID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressRollup), args.Error(1)
}

func (m *MockProgressService) CourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	args := m.Called(ctx, learnerID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseProgress), args.Error(1)
}

func (m *MockProgressService) ResetActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error) {
	args := m.Called(ctx, learnerID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityProgress), args.Error(1)
}
