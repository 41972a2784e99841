package session

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiescence interval before a search fires.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delays work until input has been quiet for a fixed
// interval. Each Trigger cancels the previously scheduled call, so only
// the last burst survives. Safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer constructs a Debouncer with the given interval; a
// non-positive interval falls back to DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiescence interval, cancelling any
// pending call that has not fired yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
