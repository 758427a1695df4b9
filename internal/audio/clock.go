// Package audio provides playback transports: a speaker-backed Player and a
// silent Clock.
package audio

import (
	"sync"
	"time"

	"goodear/internal/playback"
)

// Clock is a silent transport whose position advances with wall time while
// playing. It stands in for a real player in headless runs.
type Clock struct {
	*monitor

	mu       sync.Mutex
	duration float64
	base     float64
	anchor   time.Time
	playing  bool
}

var _ playback.Transport = (*Clock)(nil)

// NewClock returns a paused clock at zero. A positive duration caps the
// position; zero leaves it unbounded.
func NewClock(duration float64) *Clock {
	c := &Clock{duration: duration}
	c.monitor = newMonitor(c.CurrentTime, DefaultPollInterval)
	return c
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.anchor = time.Now()
	c.playing = true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.base = c.positionLocked()
	c.playing = false
}

func (c *Clock) Seek(seconds float64) {
	c.mu.Lock()
	c.base = c.clamp(seconds)
	c.anchor = time.Now()
	t := c.base
	c.mu.Unlock()

	c.monitor.seeked(t)
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// Duration returns the configured cap, or zero.
func (c *Clock) Duration() float64 { return c.duration }

// Playing reports whether the clock is running.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Close stops the observers.
func (c *Clock) Close() error {
	c.monitor.close()
	return nil
}

func (c *Clock) positionLocked() float64 {
	if !c.playing {
		return c.base
	}
	return c.clamp(c.base + time.Since(c.anchor).Seconds())
}

func (c *Clock) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.duration > 0 && t > c.duration {
		return c.duration
	}
	return t
}
