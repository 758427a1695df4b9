package playback

import "sync"

// outbox sits between the session loop and the Events channel so the loop
// never waits on a subscriber. State events are kept in order and always
// delivered; a position event replaces an undelivered one at the tail.
type outbox struct {
	mu        sync.Mutex
	queue     []Event
	closed    bool
	coalesced int
	wake      chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) push(ev Event) {
	o.mu.Lock()
	n := len(o.queue)
	if ev.Kind == EventPosition && n > 0 && o.queue[n-1].Kind == EventPosition {
		o.queue[n-1] = ev
		o.coalesced++
	} else {
		o.queue = append(o.queue, ev)
	}
	o.mu.Unlock()
	o.signal()
}

// close marks the end of the stream. Queued events are still delivered.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.signal()
}

func (o *outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// next blocks until an event is queued. It returns false once the outbox is
// closed and empty.
func (o *outbox) next() (Event, bool) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			ev := o.queue[0]
			o.queue[0] = Event{}
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return ev, true
		}
		closed := o.closed
		o.mu.Unlock()

		if closed {
			return Event{}, false
		}
		<-o.wake
	}
}

// skipped returns how many position events were replaced before delivery.
func (o *outbox) skipped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.coalesced
}
