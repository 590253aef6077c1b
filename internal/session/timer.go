package session

import (
	"context"
	"sync"
	"time"

	"trivia-service/internal/models"
)

// startTimerLocked arms a ticker bound to the current generation. The ticker
// is created here, under the lock, so a clock advanced right after a
// transition is always observed.
func (m *Machine) startTimerLocked() {
	m.stopTimerLocked()
	gen := m.generation
	ticker := m.clock.Ticker(m.tickEvery)
	done := make(chan struct{})
	var once sync.Once
	m.stopTimer = func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
	go m.runTimer(gen, ticker.C, done)
}

func (m *Machine) stopTimerLocked() {
	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}
}

func (m *Machine) runTimer(gen uint64, ticks <-chan time.Time, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticks:
			if !m.tick(gen) {
				return
			}
		}
	}
}

// tick recomputes the remaining time from the wall clock. It reports whether
// the timer should keep running.
func (m *Machine) tick(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || gen != m.generation {
		return false
	}
	now := m.clock.Now()
	if m.expireIfDueLocked(context.Background(), now) {
		m.broadcastLocked(now)
		return false
	}
	if m.state.Status(now) != models.StatusInProgress {
		return false
	}
	m.broadcastLocked(now)
	return true
}
