package worker

import (
	"context"
	"fmt"
	"log/slog"

	"goodear/internal/ffmpeg"
	"goodear/internal/library"
	"goodear/internal/pipeline"
)

// Options configures the worker.
type Options struct {
	NoAsync       bool
	MaxConcurrent int
	// Probe asks ffprobe for the audio duration when it is installed.
	Probe    bool
	Pipeline pipeline.Options
}

// Lesson is one loaded and segmented lesson. Err is set when the transcript
// could not be loaded; the other lessons are unaffected.
type Lesson struct {
	Pair     library.Pair
	Result   *pipeline.Result
	Skipped  int
	Duration float64
	Err      error
}

// Sections returns the lesson's sections, or nil if it failed to load.
func (l *Lesson) Sections() []pipeline.Segment {
	if l.Result == nil {
		return nil
	}
	return l.Result.Sections
}

// Run loads and segments every pair. The returned lessons are in pair order.
// Only cancellation of ctx makes Run fail.
func Run(ctx context.Context, pairs []library.Pair, opts Options) ([]Lesson, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	probe := opts.Probe && ffmpeg.ProbeAvailable()

	slog.Info("loading lessons", "count", len(pairs))

	var (
		lessons []Lesson
		err     error
	)
	if !opts.NoAsync && len(pairs) > 1 {
		lessons, err = loadConcurrent(ctx, pairs, probe, opts)
	} else {
		lessons, err = loadSequential(ctx, pairs, probe, opts)
	}
	if err != nil {
		return nil, err
	}

	failed := 0
	for i := range lessons {
		if lessons[i].Err != nil {
			failed++
		}
	}
	slog.Info("lessons loaded", "count", len(lessons), "failed", failed)
	return lessons, nil
}

// loadLesson never fails the batch; problems are recorded on the lesson.
func loadLesson(ctx context.Context, pair library.Pair, probe bool, opts Options) Lesson {
	lesson := Lesson{Pair: pair}

	t, res, err := pipeline.LoadAndProcess(pair.Transcript, opts.Pipeline)
	if err != nil {
		lesson.Err = err
		slog.Warn("cannot load transcript", "lesson", pair.Name, "err", err)
		return lesson
	}
	lesson.Result = res
	lesson.Skipped = t.Skipped
	if t.Skipped > 0 {
		slog.Debug("skipped malformed subtitle blocks", "lesson", pair.Name, "count", t.Skipped)
	}
	if res.Empty() {
		lesson.Err = fmt.Errorf("%s: no sections found", pair.Name)
		slog.Warn("no sections found", "lesson", pair.Name)
		return lesson
	}

	lesson.Duration = res.Sections[len(res.Sections)-1].End
	if probe {
		if info := ffmpeg.LogMediaInfo(ctx, pair.Audio); info != nil && info.Duration > 0 {
			lesson.Duration = info.Duration
		}
	}

	slog.Debug("lesson loaded",
		"lesson", pair.Name,
		"sentences", len(res.Sentences),
		"sections", len(res.Sections))
	return lesson
}
