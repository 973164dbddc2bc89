package cure

import (
	"sync"
	"time"
)

// Scheduler runs a function periodically until stopped.
// Stop must not wait for a running call to return: the loop stops itself from inside a tick.
type Scheduler interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// TickerScheduler runs the function on a time.Ticker goroutine.
type TickerScheduler struct {
	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerScheduler creates a stopped TickerScheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Start begins calling fn every interval. A running schedule is replaced.
func (s *TickerScheduler) Start(interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Stop ends the schedule. The function is not called again after the in-flight call.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
