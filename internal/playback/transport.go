// Package playback drives an audio transport section by section.
package playback

import "time"

// Transport is the audio engine a Session steers. Implementations may fire
// observer callbacks from any goroutine.
type Transport interface {
	Play()
	Pause()
	Seek(seconds float64)
	CurrentTime() float64

	// AddPeriodicObserver calls fn every interval while the registration lives.
	AddPeriodicObserver(interval time.Duration, fn func()) Registration
	// AddBoundaryObserver calls fn when playback crosses one of times.
	AddBoundaryObserver(times []float64, fn func(at float64)) Registration
}

// Registration is a live observer subscription.
type Registration interface {
	Cancel()
}
