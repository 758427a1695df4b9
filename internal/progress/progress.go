// Package progress remembers which sections of a lesson have been played.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"goodear/internal/pipeline"
	"goodear/internal/playback"
	"goodear/internal/store"
)

// DefaultPrefix is prepended to the lesson name to form the store key.
const DefaultPrefix = "playedSegments_"

type options struct {
	prefix string
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*options)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(p string) Option {
	return func(o *options) {
		if p != "" {
			o.prefix = p
		}
	}
}

// WithLogger sets the logger used by Consume.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// LessonName returns the name a lesson is tracked under: the base name of
// its audio or transcript file without the extension.
func LessonName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Tracker is the set of played section starts for one lesson. Sections are
// identified by their start time. It is safe for concurrent use.
type Tracker struct {
	st     store.Store
	key    string
	logger *slog.Logger

	mu     sync.Mutex
	played map[float64]struct{}
}

// Load reads the played set of lesson from st. A missing key yields an
// empty set.
func Load(st store.Store, lesson string, opts ...Option) (*Tracker, error) {
	o := options{prefix: DefaultPrefix, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tracker{
		st:     st,
		key:    o.prefix + lesson,
		logger: o.logger.With("lesson", lesson),
		played: make(map[float64]struct{}),
	}

	var starts []float64
	if _, err := st.Get(t.key, &starts); err != nil {
		return nil, fmt.Errorf("load played sections: %w", err)
	}
	for _, s := range starts {
		t.played[s] = struct{}{}
	}
	return t, nil
}

// Key returns the store key of the lesson.
func (t *Tracker) Key() string { return t.key }

// MarkPlayed records sec as played. The set is persisted only when sec was
// not already in it; the returned bool reports whether it was added.
func (t *Tracker) MarkPlayed(sec pipeline.Segment) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.played[sec.Start]; ok {
		return false, nil
	}
	t.played[sec.Start] = struct{}{}

	if err := t.st.Set(t.key, t.sortedLocked()); err != nil {
		delete(t.played, sec.Start)
		return false, fmt.Errorf("save played sections: %w", err)
	}
	return true, nil
}

// IsPlayed reports whether sec has been played.
func (t *Tracker) IsPlayed(sec pipeline.Segment) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.played[sec.Start]
	return ok
}

// Played returns the played section starts in ascending order.
func (t *Tracker) Played() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedLocked()
}

// Count returns the number of played sections.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.played)
}

// CountIn returns how many of sections have been played.
func (t *Tracker) CountIn(sections []pipeline.Segment) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, sec := range sections {
		if _, ok := t.played[sec.Start]; ok {
			n++
		}
	}
	return n
}

func (t *Tracker) sortedLocked() []float64 {
	out := make([]float64, 0, len(t.played))
	for s := range t.played {
		out = append(out, s)
	}
	sort.Float64s(out)
	return out
}

// Consume marks sections as played from a session's event stream until the
// stream closes or ctx is done. A section counts as played once playback
// starts on it or it plays through to its end.
func (t *Tracker) Consume(ctx context.Context, events <-chan playback.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind != playback.EventPlayed && ev.Kind != playback.EventSectionEnded {
				continue
			}
			added, err := t.MarkPlayed(ev.Section)
			if err != nil {
				t.logger.Warn("could not save progress", "start", ev.Section.Start, "error", err)
				continue
			}
			if added {
				t.logger.Debug("section played", "start", ev.Section.Start)
			}
		}
	}
}
