package inspector

import (
	"sync"
	"time"
)

// pendingSet is the latest not-yet-sent parameter value.
type pendingSet struct {
	op    string
	param string
	value [4]float32
}

// debouncer coalesces rapid slider input into one trailing runtime call.
// Every Set replaces the pending value and restarts the delay, so a drag
// gesture produces a single set_param carrying the final value.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending *pendingSet
	send    func(op, param string, value [4]float32)
}

func newDebouncer(delay time.Duration, send func(op, param string, value [4]float32)) *debouncer {
	return &debouncer{delay: delay, send: send}
}

// Set schedules the value to be sent after the delay elapses without
// another Set.
func (d *debouncer) Set(op, param string, value [4]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = &pendingSet{op: op, param: param, value: value}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p != nil {
		d.send(p.op, p.param, p.value)
	}
}

// Flush sends any pending value immediately. Called on panel teardown so an
// in-flight drag is not lost.
func (d *debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}
