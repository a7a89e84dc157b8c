// Package address supports the delivery address form: a cancellable
// debouncer for postal-code input, geocoder-backed autofill, phone number
// normalization and client-side validation.
package address

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// DefaultDebounceDelay is the quiet period after the last input before a
// lookup fires.
const DefaultDebounceDelay = 500 * time.Millisecond

// Debouncer delays a function call until input has been quiet for the
// configured delay. Each Trigger cancels the pending call and restarts the
// timer, so a burst of inputs results in exactly one call. Safe for
// concurrent use.
type Debouncer struct {
	clk   clock.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   clock.Timer
	cancel  chan struct{}
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer firing delay after the last Trigger.
// A nil clk uses the wall clock, a non-positive delay uses
// DefaultDebounceDelay.
func NewDebouncer(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.WallClock
	}
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{clk: clk, delay: delay}
}

// Trigger schedules fn to run after the delay, cancelling any pending
// call. fn runs on its own goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	d.gen++
	gen := d.gen
	timer := d.clk.NewTimer(d.delay)
	cancel := make(chan struct{})
	d.timer = timer
	d.cancel = cancel

	go func() {
		select {
		case <-timer.Chan():
		case <-cancel:
			return
		}

		d.mu.Lock()
		stale := gen != d.gen || d.stopped
		if !stale {
			d.timer = nil
			d.cancel = nil
		}
		d.mu.Unlock()

		if !stale {
			fn()
		}
	}()
}

// Stop cancels any pending call and rejects further triggers. Used when
// the form goes away.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		close(d.cancel)
		d.timer = nil
		d.cancel = nil
	}
}
