package playback

import "goodear/internal/pipeline"

// EventKind identifies what changed in a session.
type EventKind int

const (
	EventPosition EventKind = iota
	EventSectionChanged
	EventPlayed
	EventPaused
	EventSectionEnded
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventPosition:
		return "position"
	case EventSectionChanged:
		return "section_changed"
	case EventPlayed:
		return "played"
	case EventPaused:
		return "paused"
	case EventSectionEnded:
		return "section_ended"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is a state change published by a Session. Section is the section
// the event is about: the one that ended for EventSectionEnded, the current
// one otherwise.
type Event struct {
	Kind     EventKind
	Section  pipeline.Segment
	Snapshot Snapshot
}

// State is the mutable part of a session.
type State struct {
	SectionIndex int
	Position     float64
	Playing      bool
	Autoplay     bool
}

// Snapshot is a State with the figures a progress display needs.
type Snapshot struct {
	State
	Section  pipeline.Segment
	Sections int
}

// Elapsed returns the position relative to the section start.
func (s Snapshot) Elapsed() float64 {
	return s.Position - s.Section.Start
}

// Duration returns the current section's length.
func (s Snapshot) Duration() float64 {
	return s.Section.Duration()
}

// Progress returns how far through the section playback is, in [0, 1].
func (s Snapshot) Progress() float64 {
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	p := s.Elapsed() / d
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
