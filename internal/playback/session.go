package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"goodear/internal/highlight"
	"goodear/internal/pipeline"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("playback: session closed")
	// ErrNoSections is returned by New when there is nothing to play.
	ErrNoSections = errors.New("playback: no sections found")
)

// Session plays a list of sections over a Transport. All state is owned by
// one goroutine; public methods hand it work and wait for the result, and
// transport callbacks are queued onto the same goroutine.
type Session struct {
	id        uuid.UUID
	sections  []pipeline.Segment
	sentences []pipeline.Segment
	transport Transport
	opts      options
	logger    *slog.Logger

	// owned by the loop
	state State
	regs  []Registration

	cmds     chan func()
	out      *outbox
	events   chan Event
	quit     chan struct{}
	done     chan struct{}
	finished chan struct{}
	quitOnce sync.Once

	// written before done is closed
	final Snapshot
}

// New starts a session on sections. sentences are the sentence units used
// for sentence navigation. The session stops when ctx is cancelled or Close
// is called.
func New(ctx context.Context, sections, sentences []pipeline.Segment, transport Transport, opts ...Option) (*Session, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.initial < 0 || o.initial >= len(sections) {
		return nil, fmt.Errorf("playback: initial section %d out of range [0, %d)", o.initial, len(sections))
	}

	id := uuid.New()
	s := &Session{
		id:        id,
		sections:  sections,
		sentences: sentences,
		transport: transport,
		opts:      o,
		logger:    o.logger.With("session", id.String()),
		state: State{
			SectionIndex: o.initial,
			Position:     sections[o.initial].Start,
			Autoplay:     o.autoplay,
		},
		cmds:     make(chan func(), 32),
		out:      newOutbox(),
		events:   make(chan Event, o.buffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}

	transport.Seek(s.state.Position)

	ends := make([]float64, len(sections))
	for i, sec := range sections {
		ends[i] = sec.End
	}
	s.regs = append(s.regs,
		transport.AddPeriodicObserver(o.tick, func() { s.post(s.tick) }),
		transport.AddBoundaryObserver(ends, func(at float64) {
			s.post(func() { s.boundary(at) })
		}),
	)

	s.logger.Debug("session started", "sections", len(sections), "sentences", len(sentences), "initial", o.initial)
	go s.run(ctx)
	go s.deliver()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Events returns the event stream. It is closed after EventClosed. State
// changes are never dropped; consecutive position events may be merged into
// the latest one when the subscriber falls behind. The stream must be drained
// until it closes.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} { return s.finished }

// Close stops the session and cancels its transport observers. It does not
// release the transport.
func (s *Session) Close() error {
	s.quitOnce.Do(func() { close(s.quit) })
	<-s.finished
	return nil
}

func (s *Session) Play() error   { return s.do(s.play) }
func (s *Session) Pause() error  { return s.do(s.pause) }
func (s *Session) Toggle() error { return s.do(s.toggle) }

// Seek moves the transport to t without clamping or changing section.
func (s *Session) Seek(t float64) error {
	return s.do(func() { s.seek(t) })
}

// Next moves to the following section. It is a no-op on the last one.
func (s *Session) Next() error { return s.do(s.next) }

// Prev moves to the preceding section. It is a no-op on the first one.
func (s *Session) Prev() error { return s.do(s.prev) }

// Restart seeks to the start of the current section.
func (s *Session) Restart() error { return s.do(s.restart) }

// Select jumps to section i.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.sections) {
		return fmt.Errorf("playback: section %d out of range [0, %d)", i, len(s.sections))
	}
	return s.do(func() { s.switchTo(i, s.sections[i].Start) })
}

// Rewind steps back by seconds, or the configured default when by <= 0,
// without leaving the current section.
func (s *Session) Rewind(by float64) error {
	if by <= 0 {
		by = s.opts.rewind
	}
	return s.do(func() { s.step(-by) })
}

// FastForward steps ahead by seconds, or the configured default when by <= 0,
// without leaving the current section.
func (s *Session) FastForward(by float64) error {
	if by <= 0 {
		by = s.opts.forward
	}
	return s.do(func() { s.step(by) })
}

// PrevSentence seeks to the previous sentence, crossing into the preceding
// section when the current one has none left.
func (s *Session) PrevSentence() error { return s.do(s.prevSentence) }

// NextSentence seeks to the next sentence, crossing into the following
// section when the current one has none left.
func (s *Session) NextSentence() error { return s.do(s.nextSentence) }

func (s *Session) SetAutoplay(on bool) error {
	return s.do(func() { s.state.Autoplay = on })
}

// State returns a copy of the current state. After Close it returns the
// final state.
func (s *Session) State() State {
	return s.Snapshot().State
}

// Snapshot returns the current state with section figures.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	if err := s.do(func() { snap = s.snapshot() }); err != nil {
		return s.final
	}
	return snap
}

// Sections returns the sections being played.
func (s *Session) Sections() []pipeline.Segment { return s.sections }

// Sentences returns the sentence units of section i.
func (s *Session) Sentences(i int) []pipeline.Segment {
	if i < 0 || i >= len(s.sections) {
		return nil
	}
	return highlight.Overlapping(s.sentences, s.sections[i])
}

func (s *Session) run(ctx context.Context) {
	defer close(s.finished)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			s.teardown("closed")
			return
		case <-ctx.Done():
			s.teardown(ctx.Err().Error())
			return
		}
	}
}

func (s *Session) teardown(reason string) {
	for _, r := range s.regs {
		r.Cancel()
	}
	s.regs = nil

	s.final = s.snapshot()
	close(s.done)

	s.emit(EventClosed, s.current())
	s.out.close()
	s.logger.Debug("session stopped", "reason", reason, "merged_positions", s.out.skipped())
}

// deliver moves events from the outbox to the Events channel.
func (s *Session) deliver() {
	defer close(s.events)
	for {
		ev, ok := s.out.next()
		if !ok {
			return
		}
		s.events <- ev
	}
}

// do runs fn on the loop and waits for it.
func (s *Session) do(fn func()) error {
	ack := make(chan struct{})
	cmd := func() {
		fn()
		close(ack)
	}

	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrClosed
	}

	select {
	case <-ack:
		return nil
	case <-s.done:
		select {
		case <-ack:
			return nil
		default:
			return ErrClosed
		}
	}
}

// post queues fn from a transport callback without blocking the caller.
// Callbacks arriving after teardown are dropped.
func (s *Session) post(fn func()) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.cmds <- fn:
	default:
		go func() {
			select {
			case s.cmds <- fn:
			case <-s.done:
			}
		}()
	}
}

func (s *Session) emit(kind EventKind, section pipeline.Segment) {
	s.out.push(Event{Kind: kind, Section: section, Snapshot: s.snapshot()})
}

func (s *Session) current() pipeline.Segment {
	return s.sections[s.state.SectionIndex]
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{State: s.state, Section: s.current(), Sections: len(s.sections)}
}

func (s *Session) play() {
	s.transport.Play()
	if s.state.Playing {
		return
	}
	s.state.Playing = true
	s.emit(EventPlayed, s.current())
}

func (s *Session) pause() {
	s.transport.Pause()
	if !s.state.Playing {
		return
	}
	s.state.Playing = false
	s.emit(EventPaused, s.current())
}

func (s *Session) toggle() {
	if s.state.Playing {
		s.pause()
	} else {
		s.play()
	}
}

func (s *Session) seek(t float64) {
	s.transport.Seek(t)
	s.state.Position = t
	s.emit(EventPosition, s.current())
}

// switchTo makes section i current and seeks to t. Playback carries on into
// the new section when it was running.
func (s *Session) switchTo(i int, t float64) {
	s.state.SectionIndex = i
	s.seek(t)
	s.emit(EventSectionChanged, s.current())
	if s.state.Playing {
		s.transport.Play()
		s.emit(EventPlayed, s.current())
	}
	s.logger.Debug("section changed", "index", i, "start", s.current().Start)
}

func (s *Session) next() {
	if i := s.state.SectionIndex + 1; i < len(s.sections) {
		s.switchTo(i, s.sections[i].Start)
	}
}

func (s *Session) prev() {
	if i := s.state.SectionIndex - 1; i >= 0 {
		s.switchTo(i, s.sections[i].Start)
	}
}

func (s *Session) restart() {
	s.seek(s.current().Start)
	if s.state.Playing {
		s.transport.Play()
	}
}

// step moves by delta seconds, clamped to the current section.
func (s *Session) step(delta float64) {
	sec := s.current()
	s.transport.Pause()

	t := s.state.Position + delta
	if t < sec.Start {
		t = sec.Start
	}
	if t > sec.End {
		t = sec.End
	}
	s.seek(t)

	if s.state.Playing {
		s.transport.Play()
	}
}

// unitStart is where a unit begins within sec. Units carried over from the
// previous section begin at the section start.
func unitStart(u, sec pipeline.Segment) float64 {
	if u.Start < sec.Start {
		return sec.Start
	}
	return u.Start
}

func (s *Session) prevSentence() {
	sec := s.current()
	units := highlight.Overlapping(s.sentences, sec)
	for i := len(units) - 1; i >= 0; i-- {
		if t := unitStart(units[i], sec); t < s.state.Position {
			s.seek(t)
			return
		}
	}

	i := s.state.SectionIndex - 1
	if i < 0 {
		return
	}
	prev := s.sections[i]
	t := prev.Start
	if units := highlight.Overlapping(s.sentences, prev); len(units) > 0 {
		t = unitStart(units[len(units)-1], prev)
	}
	s.switchTo(i, t)
}

func (s *Session) nextSentence() {
	sec := s.current()
	for _, u := range highlight.Overlapping(s.sentences, sec) {
		if t := unitStart(u, sec); t > s.state.Position {
			s.seek(t)
			return
		}
	}

	i := s.state.SectionIndex + 1
	if i >= len(s.sections) {
		return
	}
	next := s.sections[i]
	t := next.Start
	if units := highlight.Overlapping(s.sentences, next); len(units) > 0 {
		t = unitStart(units[0], next)
	}
	s.switchTo(i, t)
}

func (s *Session) tick() {
	s.state.Position = s.transport.CurrentTime()
	s.emit(EventPosition, s.current())
}

// boundary handles playback reaching a section end at time at.
func (s *Session) boundary(at float64) {
	ended := s.current()
	for _, sec := range s.sections {
		if sec.End == at {
			ended = sec
			break
		}
	}
	s.state.Position = at
	s.emit(EventSectionEnded, ended)

	if !s.state.Playing {
		return
	}
	if s.state.Autoplay {
		// next is a no-op on the last section; playback runs on past it
		s.next()
		return
	}
	s.pause()
}
