package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/activity"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/services"
)

// MockLessonService is a mock implementation of services.LessonService
type MockLessonService struct {
	mock.Mock
}

func (m *MockLessonService) state(args mock.Arguments) (*services.LessonState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LessonState), args.Error(1)
}

func (m *MockLessonService) Open(ctx context.Context, learnerID, lessonID string) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID))
}

func (m *MockLessonService) Interact(ctx context.Context, learnerID, lessonID string, in activity.Interaction) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID, in))
}

func (m *MockLessonService) Tick(ctx context.Context, learnerID, lessonID string, elapsedSeconds float64) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID, elapsedSeconds))
}

func (m *MockLessonService) Advance(ctx context.Context, learnerID, lessonID string) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID))
}

func (m *MockLessonService) Retreat(ctx context.Context, learnerID, lessonID string) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID))
}

func (m *MockLessonService) JumpTo(ctx context.Context, learnerID, lessonID string, index int) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID, index))
}

func (m *MockLessonService) MarkComplete(ctx context.Context, learnerID, lessonID string) (*services.LessonState, error) {
	return m.state(m.Called(ctx, learnerID, lessonID))
}

func (m *MockLessonService) Close(ctx context.Context, learnerID, lessonID string) error {
	args := m.Called(ctx, learnerID, lessonID)
	return args.Error(0)
}

func (m *MockLessonService) EvictIdle(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *MockLessonService) CloseAll(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *MockLessonService) ApplyReset(learnerID string, p models.ActivityProgress) {
	m.Called(learnerID, p)
}
