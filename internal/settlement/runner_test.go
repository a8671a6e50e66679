package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"pairs-ledger/internal/pairs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockJob is a mock implementation of Job.
type MockJob struct {
	mock.Mock
}

func (m *MockJob) RefreshAllPrices(ctx context.Context) (pairs.BatchResult, error) {
	args := m.Called()
	return args.Get(0).(pairs.BatchResult), args.Error(1)
}

func (m *MockJob) RecalculateAll(ctx context.Context) (pairs.BatchResult, error) {
	args := m.Called()
	return args.Get(0).(pairs.BatchResult), args.Error(1)
}

func TestRunner_RunOnce_RefreshesThenRecalculates(t *testing.T) {
	// Arrange
	job := new(MockJob)
	var order []string
	job.On("RefreshAllPrices").Return(pairs.BatchResult{TotalProcessed: 2, SuccessCount: 1, ErrorCount: 1}, nil).
		Run(func(mock.Arguments) { order = append(order, "refresh") })
	job.On("RecalculateAll").Return(pairs.BatchResult{TotalProcessed: 3, SuccessCount: 3}, nil).
		Run(func(mock.Arguments) { order = append(order, "recalculate") })

	runner := NewRunner(zap.NewNop(), job, time.Minute, true)

	// Act
	result := runner.RunOnce(context.Background())

	// Assert
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, []string{"refresh", "recalculate"}, order)
	job.AssertExpectations(t)
}

func TestRunner_RunOnce_RecalculatesEvenIfRefreshFails(t *testing.T) {
	job := new(MockJob)
	job.On("RefreshAllPrices").Return(pairs.BatchResult{}, errors.New("quotes down"))
	job.On("RecalculateAll").Return(pairs.BatchResult{TotalProcessed: 1, SuccessCount: 1}, nil)

	runner := NewRunner(zap.NewNop(), job, time.Minute, true)
	result := runner.RunOnce(context.Background())

	assert.Equal(t, 1, result.TotalProcessed)
	job.AssertExpectations(t)
}

func TestRunner_RunOnce_SkipsRefreshWhenDisabled(t *testing.T) {
	job := new(MockJob)
	job.On("RecalculateAll").Return(pairs.BatchResult{}, errors.New("store down"))

	runner := NewRunner(zap.NewNop(), job, time.Minute, false)
	runner.RunOnce(context.Background())

	job.AssertNotCalled(t, "RefreshAllPrices")
	job.AssertExpectations(t)
}

func TestRunner_Run_StopsOnCancel(t *testing.T) {
	job := new(MockJob)
	job.On("RecalculateAll").Return(pairs.BatchResult{}, nil)

	runner := NewRunner(zap.NewNop(), job, 10*time.Millisecond, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	job.AssertCalled(t, "RecalculateAll")
}
