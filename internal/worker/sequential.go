package worker

import (
	"context"
	"fmt"
	"log/slog"

	"goodear/internal/library"
)

// loadSequential loads lessons one at a time.
func loadSequential(ctx context.Context, pairs []library.Pair, probe bool, opts Options) ([]Lesson, error) {
	lessons := make([]Lesson, 0, len(pairs))

	for i, pair := range pairs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		slog.Debug("loading lesson",
			"lesson", fmt.Sprintf("%d/%d", i+1, len(pairs)),
			"name", pair.Name)

		lessons = append(lessons, loadLesson(ctx, pair, probe, opts))
	}

	return lessons, nil
}
