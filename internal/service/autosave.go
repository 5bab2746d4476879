package service

import (
	"log"
	"sync"
	"time"
)

// ─────────────────────────────────────────────────────────────
// Autosaver — debounced scene persistence
// ─────────────────────────────────────────────────────────────

// Autosaver coalesces bursts of scene mutations into one deferred save.
// A drag emits dozens of move events; each Trigger restarts the timer, so
// the scene persists once, shortly after the gesture settles.
type Autosaver struct {
	mu    sync.Mutex
	delay time.Duration
	save  func() error
	timer *time.Timer
}

// DefaultAutosaveDelay is how long the canvas must stay quiet before a
// pending save fires.
const DefaultAutosaveDelay = 500 * time.Millisecond

// NewAutosaver creates an Autosaver around a save callback. The callback
// runs on a timer goroutine; it must do its own locking.
func NewAutosaver(delay time.Duration, save func() error) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{delay: delay, save: save}
}

// Trigger schedules a save after the debounce delay, restarting the
// countdown if one is already pending.
func (a *Autosaver) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	a.timer = nil
	a.mu.Unlock()
	if err := a.save(); err != nil {
		log.Printf("[autosave] save failed: %v", err)
	}
}

// Flush cancels any pending timer and saves immediately. Called on
// shutdown and board switch so the last mutations are never lost.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	return a.save()
}

// Stop cancels any pending save without persisting.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
