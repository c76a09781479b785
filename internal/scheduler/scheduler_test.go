package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/scheduler"
)

type countingEvictor struct {
	calls atomic.Int32
}

func (e *countingEvictor) EvictIdle(context.Context) int {
	e.calls.Add(1)
	return 1
}

func TestScheduler_RunsEvictionPeriodically(t *testing.T) {
	ev := &countingEvictor{}
	s := scheduler.New(context.Background(), ev)
	require.NoError(t, s.Start(20*time.Millisecond))
	defer s.Stop()

	assert.Eventually(t, func() bool { return ev.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_WaitsForFirstInterval(t *testing.T) {
	ev := &countingEvictor{}
	s := scheduler.New(context.Background(), ev)
	require.NoError(t, s.Start(time.Hour))
	s.Stop()

	assert.Equal(t, int32(0), ev.calls.Load())
}
