// Package loop drives an animator from a single goroutine. Everything that
// touches display state runs on that goroutine, either as a frame or as a
// posted task.
package loop

import (
	"fmt"
	"time"
)

// Scheduler decides when the next frame is due.
type Scheduler interface {
	// C delivers a value when a frame is due.
	C() <-chan time.Time
	// Done is called after each frame has finished.
	Done()
	Stop()
}

// frameSynced re-arms a one-shot timer only after a frame has finished, so a
// slow frame delays the next one instead of queueing it.
type frameSynced struct {
	timer    *time.Timer
	interval time.Duration
}

// FrameSynced returns a scheduler that requests one frame per display refresh
// at the given rate.
func FrameSynced(fps int) (Scheduler, error) {
	if fps < 1 {
		return nil, fmt.Errorf("fps must be positive: got %d", fps)
	}
	interval := time.Second / time.Duration(fps)
	return &frameSynced{timer: time.NewTimer(interval), interval: interval}, nil
}

func (s *frameSynced) C() <-chan time.Time { return s.timer.C }
func (s *frameSynced) Done()               { s.timer.Reset(s.interval) }
func (s *frameSynced) Stop()               { s.timer.Stop() }

// fixedRate fires on a repeating ticker regardless of how long frames take.
type fixedRate struct {
	ticker *time.Ticker
}

// FixedRate returns a scheduler that fires every interval.
func FixedRate(interval time.Duration) (Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive: got %s", interval)
	}
	return &fixedRate{ticker: time.NewTicker(interval)}, nil
}

func (s *fixedRate) C() <-chan time.Time { return s.ticker.C }
func (s *fixedRate) Done()               {}
func (s *fixedRate) Stop()               { s.ticker.Stop() }
