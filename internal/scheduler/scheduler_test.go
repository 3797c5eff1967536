// internal/scheduler/scheduler_test.go
package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollInterval(t *testing.T) {
	assert.Equal(t, time.Second, PollInterval(10*time.Second))
	assert.Equal(t, time.Second, PollInterval(59*time.Second))
	assert.Equal(t, time.Minute, PollInterval(time.Minute))
	assert.Equal(t, time.Minute, PollInterval(45*time.Minute))
	assert.Equal(t, time.Minute, PollInterval(12*time.Hour))
	assert.Equal(t, 24*time.Hour, PollInterval(24*time.Hour))
	assert.Equal(t, 24*time.Hour, PollInterval(48*time.Hour))
}

func TestSchedulerRunsImmediatelyOnStart(t *testing.T) {
	var calls int32
	var gotWindow atomic.Value

	s := New(2*time.Second, func(window time.Duration) (int, error) {
		atomic.AddInt32(&calls, 1)
		gotWindow.Store(window)
		return 0, nil
	})

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 10*time.Millisecond, "first sweep must run at startup, not after the first tick")

	assert.Equal(t, 2*time.Second, gotWindow.Load())
}

func TestSchedulerTicks(t *testing.T) {
	var calls int32

	s := New(5*time.Second, func(time.Duration) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})

	s.Start()
	defer s.Stop()

	// Second-scale window polls every second; expect the startup run plus
	// at least one tick.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerStopHaltsSweeps(t *testing.T) {
	var calls int32

	s := New(time.Second, func(time.Duration) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, nil
	})

	s.Start()
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	after := atomic.LoadInt32(&calls)

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls), "no sweeps after Stop")
}
