package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lessonflow/internal/repository"
)

// MockKVStore is a mock implementation of repository.KVStore
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) (*repository.Entry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Entry), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value []byte, revision int64) (bool, error) {
	args := m.Called(ctx, key, value, revision)
	return args.Bool(0), args.Error(1)
}

func (m *MockKVStore) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	args := m.Called(ctx, key, fn)
	return args.Error(0)
}

func (m *MockKVStore) List(ctx context.Context, prefix string) ([]repository.Entry, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Entry), args.Error(1)
}
