package watch

import (
	"sync"
	"time"
)

// eventDebouncer batches file events so a burst of writes to one file
// triggers a single re-check. The latest event per path wins.
type eventDebouncer struct {
	events   map[string]EventType
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	flushFn  func(map[string]EventType)
	closed   bool
	inflight sync.WaitGroup
	// serializes flushes so the handler never runs concurrently
	flushMu sync.Mutex
}

func newEventDebouncer(debounce time.Duration, flush func(map[string]EventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		flushFn:  flush,
	}
}

// addEvent records an event and restarts the quiet period.
func (d *eventDebouncer) addEvent(path string, eventType EventType) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.closed {
		return
	}
	d.events[path] = eventType

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mutex.Lock()
	if d.closed || len(d.events) == 0 {
		d.mutex.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]EventType)
	d.inflight.Add(1)
	d.mutex.Unlock()
	defer d.inflight.Done()

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	d.flushFn(events)
}

// pending returns the number of buffered paths.
func (d *eventDebouncer) pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.events)
}

// stop drops pending events and waits for a running flush to return.
func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]EventType)
	d.mutex.Unlock()

	d.inflight.Wait()
}
