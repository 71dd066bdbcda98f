package history

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid successive calls into a single callback
// invocation after a quiet period.
//
// Scheduling a new call cancels the previous one, so at most one timer is
// outstanding and the callback fires once per quiet period, on the trailing
// edge.
//
// Thread-safety: all methods are safe for concurrent use. The callback is
// never invoked concurrently with itself from the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // invalidates stale timer callbacks
	callback func()
}

// NewDebouncer creates a debouncer that invokes callback after no new calls
// have arrived for at least delay.
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback to run after the debounce delay, measured
// from this call. Any previously scheduled invocation is superseded.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending && d.seq == currentSeq && d.callback != nil {
			d.pending = false
			d.mu.Unlock()
			d.callback()
			return
		}
		d.mu.Unlock()
	})
}

// Cancel discards any pending scheduled call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// Invalidate a timer callback that may already be running.
	d.seq++
	d.pending = false
}

// IsPending reports whether a scheduled call has not yet fired.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
