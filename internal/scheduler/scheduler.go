// internal/scheduler/scheduler.go

// Package scheduler runs the periodic auto-void sweep over unclaimed
// orders.
package scheduler

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SweepFunc voids every eligible order older than the window and reports
// how many it voided.
type SweepFunc func(window time.Duration) (int, error)

// Scheduler invokes a sweep on a fixed cadence. The first sweep runs at
// startup, so orders that aged out while the process was down are voided
// immediately. Idle ticks produce no output.
type Scheduler struct {
	window   time.Duration
	interval time.Duration
	sweep    SweepFunc
	stop     chan struct{}
	done     chan struct{}
}

// PollInterval derives the sweep cadence from the window's magnitude:
// second-scale windows poll every second, sub-day windows every minute,
// day-scale windows once a day. The sweep stays idempotent either way;
// a finer cadence only tightens how stale a voidable order can get.
func PollInterval(window time.Duration) time.Duration {
	switch {
	case window < time.Minute:
		return time.Second
	case window < 24*time.Hour:
		return time.Minute
	default:
		return 24 * time.Hour
	}
}

func New(window time.Duration, sweep SweepFunc) *Scheduler {
	return &Scheduler{
		window:   window,
		interval: PollInterval(window),
		sweep:    sweep,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	voided, err := s.sweep(s.window)
	if err != nil {
		logrus.WithError(err).Error("Auto-void sweep failed")
		return
	}
	if voided > 0 {
		logrus.WithField("voided", voided).Info("Auto-void sweep completed")
	}
}

// Stop halts the tick loop and waits for an in-flight sweep to finish.
// Safe to call once; the scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
