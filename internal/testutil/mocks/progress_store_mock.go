package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/models"
)

// MockProgressStore is a mock implementation of store.ProgressStore
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) LoadSequence(ctx context.Context, learnerID, lessonID string) (*models.SequenceSnapshot, error) {
	args := m.Called(ctx, learnerID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SequenceSnapshot), args.Error(1)
}

func (m *MockProgressStore) SaveSequence(ctx context.Context, learnerID string, snap models.SequenceSnapshot) error {
	args := m.Called(ctx, learnerID, snap)
	return args.Error(0)
}

func (m *MockProgressStore) ListSequences(ctx context.Context, learnerID string) (map[string]models.SequenceSnapshot, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.SequenceSnapshot), args.Error(1)
}

func (m *MockProgressStore) LoadActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error) {
	args := m.Called(ctx, learnerID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityProgress), args.Error(1)
}

func (m *MockProgressStore) SaveActivity(ctx context.Context, learnerID string, p models.ActivityProgress) error {
	args := m.Called(ctx, learnerID, p)
	return args.Error(0)
}

func (m *MockProgressStore) ListActivities(ctx context.Context, learnerID string) ([]models.ActivityProgress, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityProgress), args.Error(1)
}

func (m *MockProgressStore) RecordStudy(ctx context.Context, learnerID string, day models.DailyStudyRecord) error {
	args := m.Called(ctx, learnerID, day)
	return args.Error(0)
}

func (m *MockProgressStore) StudyLog(ctx context.Context, learnerID string) ([]models.DailyStudyRecord, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyStudyRecord), args.Error(1)
}
