package scheduler

import (
	"context"
	"time"

	"occupancy-service/pkg/logger"
)

// Midnight fires a callback once at each local midnight. A single-shot
// timer is armed for the next midnight and re-armed after every fire,
// so the callback runs exactly once per day regardless of how long it
// takes.
type Midnight struct {
	fire   func(ctx context.Context) error
	logger logger.Logger
	now    func() time.Time
	stop   chan struct{}
	done   chan struct{}
}

// NewMidnight creates a new midnight scheduler
func NewMidnight(fire func(ctx context.Context) error, logger logger.Logger) *Midnight {
	return &Midnight{
		fire:   fire,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the scheduler loop in a new goroutine.
func (m *Midnight) Start() {
	go m.run()
}

// Stop shuts the scheduler down and waits for the loop to exit.
func (m *Midnight) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Midnight) run() {
	defer close(m.done)
	for {
		now := m.now()
		wait := nextMidnight(now).Sub(now)
		m.logger.Debug("Midnight rollover armed", "in", wait.Round(time.Second).String())

		timer := time.NewTimer(wait)
		select {
		case <-m.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := m.fire(ctx); err != nil {
			m.logger.Error("Midnight rollover failed", "error", err)
		}
		cancel()
	}
}

// nextMidnight returns the first local midnight strictly after t.
func nextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}
