package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/cure"
	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// autoVitamins keeps the party on its best allocations in the background.
type autoVitamins struct {
	applyMu sync.Mutex // serializes ApplyVitamins

	mu        sync.Mutex
	scheduler cure.Scheduler
	interval  time.Duration
	enabled   bool
	running   bool
}

// AutoVitaminsEnabled reports whether vitamins are applied periodically.
func (e *Engine) AutoVitaminsEnabled() bool {
	e.autoVitamins.mu.Lock()
	defer e.autoVitamins.mu.Unlock()
	return e.autoVitamins.enabled
}

// AutoVitaminsRunning reports whether the periodic job is scheduled.
func (e *Engine) AutoVitaminsRunning() bool {
	e.autoVitamins.mu.Lock()
	defer e.autoVitamins.mu.Unlock()
	return e.autoVitamins.running
}

func (e *Engine) setAutoVitamins(enabled bool) {
	e.autoVitamins.mu.Lock()
	e.autoVitamins.enabled = enabled
	e.autoVitamins.mu.Unlock()

	if enabled {
		e.StartAutoVitamins()
	} else {
		e.StopAutoVitamins()
	}
}

// StartAutoVitamins schedules ApplyVitamins over the whole party.
// It returns false when the job is already running.
func (e *Engine) StartAutoVitamins() bool {
	a := e.autoVitamins
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return false
	}
	a.running = true
	a.scheduler.Start(a.interval, e.applyVitaminsTick)

	e.logger.Info("auto vitamins started", "interval", a.interval)
	return true
}

// StopAutoVitamins cancels the periodic job.
func (e *Engine) StopAutoVitamins() {
	a := e.autoVitamins
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.scheduler.Stop()
	a.running = false

	e.logger.Info("auto vitamins stopped")
}

func (e *Engine) applyVitaminsTick() {
	if _, err := e.ApplyVitamins(context.Background(), automation.ApplyVitaminsRequest{}); err != nil {
		e.logger.Warn("applying vitamins failed", "error", err)
	}
}
