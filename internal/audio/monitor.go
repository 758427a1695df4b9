package audio

import (
	"sync"
	"time"

	"goodear/internal/playback"
)

// DefaultPollInterval is how often the monitor samples the position.
const DefaultPollInterval = 20 * time.Millisecond

type periodicObserver struct {
	interval time.Duration
	last     time.Time
	fn       func()
}

type boundaryObserver struct {
	times []float64
	fn    func(at float64)
}

// monitor polls a position source and fires observers. Periodic observers
// fire at their interval; boundary observers fire when the position moves
// forward across one of their times between two polls. A seek resets the
// reference position so jumps never fire boundaries.
type monitor struct {
	position func() float64
	poll     time.Duration

	mu       sync.Mutex
	nextID   int
	periodic map[int]*periodicObserver
	boundary map[int]*boundaryObserver
	last     float64
	gen      int
	running  bool
	stop     chan struct{}
	stopped  chan struct{}

	// held while callbacks run so Cancel can wait them out
	deliver sync.Mutex
}

func newMonitor(position func() float64, poll time.Duration) *monitor {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &monitor{
		position: position,
		poll:     poll,
		periodic: make(map[int]*periodicObserver),
		boundary: make(map[int]*boundaryObserver),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

type registration struct {
	m    *monitor
	id   int
	once sync.Once
}

// Cancel removes the observer. Once it returns the callback is not running
// and will not run again.
func (r *registration) Cancel() {
	r.once.Do(func() { r.m.remove(r.id) })
}

func (m *monitor) AddPeriodicObserver(interval time.Duration, fn func()) playback.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.periodic[id] = &periodicObserver{interval: interval, last: time.Now(), fn: fn}
	m.startLocked()
	return &registration{m: m, id: id}
}

func (m *monitor) AddBoundaryObserver(times []float64, fn func(at float64)) playback.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.boundary[id] = &boundaryObserver{times: append([]float64(nil), times...), fn: fn}
	m.startLocked()
	return &registration{m: m, id: id}
}

func (m *monitor) remove(id int) {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	delete(m.periodic, id)
	delete(m.boundary, id)
	m.mu.Unlock()
}

func (m *monitor) live(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.periodic[id]; ok {
		return true
	}
	_, ok := m.boundary[id]
	return ok
}

// seeked resets the reference position to t.
func (m *monitor) seeked(t float64) {
	m.mu.Lock()
	m.gen++
	m.last = t
	m.mu.Unlock()
}

func (m *monitor) startLocked() {
	if m.running {
		return
	}
	select {
	case <-m.stop:
		return
	default:
	}
	m.running = true
	m.last = m.position()
	go m.run()
}

func (m *monitor) run() {
	defer close(m.stopped)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.check(now)
		}
	}
}

type delivery struct {
	id int
	fn func()
}

func (m *monitor) check(now time.Time) {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	cur := m.position()

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	prev := m.last
	m.last = cur

	var due []delivery
	for id, p := range m.periodic {
		if now.Sub(p.last) >= p.interval {
			p.last = now
			due = append(due, delivery{id: id, fn: p.fn})
		}
	}
	if cur > prev {
		for id, b := range m.boundary {
			for _, t := range b.times {
				if prev < t && t <= cur {
					fn, at := b.fn, t
					due = append(due, delivery{id: id, fn: func() { fn(at) }})
				}
			}
		}
	}
	m.mu.Unlock()

	if len(due) == 0 {
		return
	}
	m.deliver.Lock()
	defer m.deliver.Unlock()
	for _, d := range due {
		if m.live(d.id) {
			d.fn()
		}
	}
}

// close stops polling and drops every observer.
func (m *monitor) close() {
	m.mu.Lock()
	select {
	case <-m.stop:
		m.mu.Unlock()
		return
	default:
	}
	close(m.stop)
	running := m.running
	m.mu.Unlock()

	if running {
		<-m.stopped
	}

	m.mu.Lock()
	m.periodic = make(map[int]*periodicObserver)
	m.boundary = make(map[int]*boundaryObserver)
	m.mu.Unlock()
}
