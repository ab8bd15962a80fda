package preset

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource implements Source for testing.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) List(ctx context.Context) ([]Ref, error) {
	args := m.Called(ctx)
	refs, _ := args.Get(0).([]Ref)
	return refs, args.Error(1)
}

func (m *MockSource) Payload(ctx context.Context, ref Ref) ([]byte, error) {
	args := m.Called(ctx, ref)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
