package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"goodear/internal/library"
)

// loadConcurrent loads lessons with bounded parallelism. Each goroutine owns
// one slot of the result slice.
func loadConcurrent(ctx context.Context, pairs []library.Pair, probe bool, opts Options) ([]Lesson, error) {
	slog.Debug("starting concurrent loading",
		"lessons", len(pairs),
		"max_concurrent", opts.MaxConcurrent)

	lessons := make([]Lesson, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)

	for i, pair := range pairs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			slog.Debug("loading lesson",
				"lesson", fmt.Sprintf("%d/%d", i+1, len(pairs)),
				"name", pair.Name)

			lessons[i] = loadLesson(gctx, pair, probe, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lessons, nil
}
