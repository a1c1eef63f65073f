package storage

import (
	"context"

	"github.com/cyp0633/termplan/plan"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetPlan(ctx context.Context, id string) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockStorage) ListPlans(ctx context.Context) ([]*Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Plan), args.Error(1)
}

func (m *MockStorage) CreatePlan(ctx context.Context, id string, def *plan.Definition) (*Plan, error) {
	args := m.Called(ctx, id, def)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockStorage) PutPlan(ctx context.Context, id string, def *plan.Definition) (*Plan, bool, error) {
	args := m.Called(ctx, id, def)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Plan), args.Bool(1), args.Error(2)
}

func (m *MockStorage) DeletePlan(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
