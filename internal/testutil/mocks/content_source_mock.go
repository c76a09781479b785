package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/models"
)

// MockContentSource is a mock implementation of content.Source
type MockContentSource struct {
	mock.Mock
}

func (m *MockContentSource) LessonActivities(ctx context.Context, lessonID string) ([]models.Activity, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockContentSource) Activity(ctx context.Context, activityID string) (*models.Activity, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockContentSource) CatalogSizes(ctx context.Context) (map[models.Variant]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Variant]int), args.Error(1)
}

func (m *MockContentSource) CourseOutline(ctx context.Context, courseID string) (*models.CourseOutline, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseOutline), args.Error(1)
}
