package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"goodear/internal/ffmpeg"
	"goodear/internal/playback"
)

// UnsupportedFormatError is returned when a file cannot be decoded.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format: %s", filepath.Ext(e.Path))
}

// Player plays an audio file through the system speaker.
type Player struct {
	*monitor

	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	cleanup   func()
	closeOnce sync.Once
}

var _ playback.Transport = (*Player)(nil)

// decode opens an mp3 or wav file.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	var dec func(*os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".wav":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	default:
		return nil, beep.Format{}, &UnsupportedFormatError{Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open audio: %w", err)
	}
	s, format, err := dec(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// Open decodes path and attaches it, paused at zero, to the speaker. Formats
// the decoder cannot read are converted with ffmpeg first.
func Open(ctx context.Context, path string) (*Player, error) {
	cleanup := func() {}
	if ffmpeg.NeedsConversion(path) {
		if !ffmpeg.Available() {
			return nil, &UnsupportedFormatError{Path: path}
		}
		wavPath, done, err := ffmpeg.TempWAV(ctx, path)
		if err != nil {
			return nil, err
		}
		path, cleanup = wavPath, done
	}

	s, format, err := decode(path)
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		s.Close()
		cleanup()
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	p := &Player{
		streamer: s,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: s, Paused: true},
		cleanup:  cleanup,
	}
	p.monitor = newMonitor(p.CurrentTime, DefaultPollInterval)
	speaker.Play(p.ctrl)
	return p, nil
}

func (p *Player) Play() {
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

func (p *Player) Pause() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Seek moves to seconds, clamped to the file.
func (p *Player) Seek(seconds float64) {
	n := p.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if last := p.streamer.Len() - 1; n > last && last >= 0 {
		n = last
	}

	speaker.Lock()
	err := p.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return
	}
	p.monitor.seeked(p.format.SampleRate.D(n).Seconds())
}

func (p *Player) CurrentTime() float64 {
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n).Seconds()
}

// Duration returns the length of the file in seconds.
func (p *Player) Duration() float64 {
	return p.format.SampleRate.D(p.streamer.Len()).Seconds()
}

// Close stops playback and releases the file.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.monitor.close()
		speaker.Clear()
		err = p.streamer.Close()
		p.cleanup()
	})
	return err
}
