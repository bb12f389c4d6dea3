// Package debounce provides keyed trailing-edge debouncing. A function
// scheduled under a key runs only after the quiescence window elapses
// with no further calls for that key.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into a single invocation.
// All methods are safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
	wg      sync.WaitGroup
}

type entry struct {
	timer *time.Timer
	fn    func()
}

// New creates a Debouncer with the given quiescence window. A
// non-positive delay makes Call run functions immediately.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*entry),
	}
}

// Call schedules fn to run after the quiescence window. A later Call
// with the same key replaces the pending fn and restarts the window.
func (d *Debouncer) Call(key string, fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if e, ok := d.pending[key]; ok {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}

	e := &entry{fn: fn}
	d.wg.Add(1)
	e.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		cur, ok := d.pending[key]
		if !ok || cur != e {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		e.fn()
	})
	d.pending[key] = e
}

// Cancel drops the pending call for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
}

// Flush runs every pending call immediately and clears the schedule.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
		}
		fns = append(fns, e.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Stop flushes pending calls and rejects further scheduling. It waits
// for in-flight timer callbacks to finish before returning.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.Flush()
	d.wg.Wait()
}
