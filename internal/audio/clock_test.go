package audio

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClock_PlayPauseSeek(t *testing.T) {
	c := NewClock(0)
	defer c.Close()

	if got := c.CurrentTime(); got != 0 {
		t.Fatalf("initial position = %v, want 0", got)
	}

	c.Play()
	time.Sleep(50 * time.Millisecond)
	c.Pause()
	paused := c.CurrentTime()
	if paused < 0.04 {
		t.Errorf("position after 50ms = %v, want >= 0.04", paused)
	}

	time.Sleep(20 * time.Millisecond)
	if got := c.CurrentTime(); got != paused {
		t.Errorf("position moved while paused: %v -> %v", paused, got)
	}

	c.Seek(12.5)
	if got := c.CurrentTime(); got != 12.5 {
		t.Errorf("position after Seek = %v, want 12.5", got)
	}
	c.Seek(-3)
	if got := c.CurrentTime(); got != 0 {
		t.Errorf("position after negative Seek = %v, want 0", got)
	}
}

func TestClock_DurationCap(t *testing.T) {
	c := NewClock(1)
	defer c.Close()

	c.Seek(5)
	if got := c.CurrentTime(); got != 1 {
		t.Errorf("Seek past end = %v, want 1", got)
	}
	c.Seek(0.99)
	c.Play()
	time.Sleep(30 * time.Millisecond)
	if got := c.CurrentTime(); got != 1 {
		t.Errorf("position past end = %v, want 1", got)
	}
}

func TestClock_PeriodicObserver(t *testing.T) {
	c := NewClock(0)
	defer c.Close()

	var n atomic.Int32
	reg := c.AddPeriodicObserver(10*time.Millisecond, func() { n.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if got := n.Load(); got < 3 {
		t.Errorf("periodic fired %d times in 150ms, want >= 3", got)
	}

	reg.Cancel()
	after := n.Load()
	time.Sleep(60 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Errorf("periodic fired %d times after Cancel", got-after)
	}
}

func TestClock_BoundaryObserver(t *testing.T) {
	c := NewClock(0)
	defer c.Close()

	fired := make(chan float64, 4)
	c.AddBoundaryObserver([]float64{0.05, 10}, func(at float64) { fired <- at })

	c.Play()
	select {
	case at := <-fired:
		if at != 0.05 {
			t.Errorf("boundary fired at %v, want 0.05", at)
		}
	case <-time.After(time.Second):
		t.Fatal("boundary did not fire")
	}
}

func TestClock_SeekDoesNotFireBoundary(t *testing.T) {
	c := NewClock(0)
	defer c.Close()

	var n atomic.Int32
	c.AddBoundaryObserver([]float64{5}, func(float64) { n.Add(1) })

	c.Play()
	c.Seek(8)
	time.Sleep(60 * time.Millisecond)
	c.Seek(2)
	time.Sleep(60 * time.Millisecond)

	if got := n.Load(); got != 0 {
		t.Errorf("boundary fired %d times across seeks, want 0", got)
	}
}

func TestClock_CloseStopsObservers(t *testing.T) {
	c := NewClock(0)

	var n atomic.Int32
	c.AddPeriodicObserver(5*time.Millisecond, func() { n.Add(1) })
	time.Sleep(30 * time.Millisecond)
	c.Close()

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Errorf("observer fired after Close")
	}
	c.Close()
}
