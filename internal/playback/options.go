package playback

import (
	"log/slog"
	"time"
)

const (
	DefaultTickInterval = 500 * time.Millisecond
	DefaultRewind       = 5.0
	DefaultForward      = 10.0
	DefaultEventBuffer  = 64
)

type options struct {
	initial  int
	autoplay bool
	tick     time.Duration
	rewind   float64
	forward  float64
	buffer   int
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		tick:    DefaultTickInterval,
		rewind:  DefaultRewind,
		forward: DefaultForward,
		buffer:  DefaultEventBuffer,
		logger:  slog.Default(),
	}
}

// Option configures a Session.
type Option func(*options)

// WithInitialSection starts the session on section i.
func WithInitialSection(i int) Option {
	return func(o *options) { o.initial = i }
}

// WithAutoplay sets whether the session moves on when a section ends.
func WithAutoplay(on bool) Option {
	return func(o *options) { o.autoplay = on }
}

// WithTickInterval sets how often the position is refreshed.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = d
		}
	}
}

// WithSteps sets the default Rewind and FastForward distances in seconds.
func WithSteps(rewind, forward float64) Option {
	return func(o *options) {
		if rewind > 0 {
			o.rewind = rewind
		}
		if forward > 0 {
			o.forward = forward
		}
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithLogger sets the logger. The session id is added to every record.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
