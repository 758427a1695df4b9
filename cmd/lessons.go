package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"goodear/internal/library"
	"goodear/internal/pipeline"
	"goodear/internal/progress"
	"goodear/internal/worker"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons [folder]",
	Short: "List the lessons in a folder, or in the imported folder",
	Long: `List every audio file that has a transcript next to it, with its section
count, duration and how many sections have been played. Without a folder the
lessons of the last imported folder are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLessons,
}

var (
	policy        string
	target        float64
	noAsync       bool
	maxConcurrent int
)

func addChunkingFlags(c *cobra.Command) {
	c.Flags().StringVar(&policy, "policy", "", "chunking policy: sentence or fragment")
	c.Flags().Float64Var(&target, "target", 0, "section length target in seconds")
}

func addWorkerFlags(c *cobra.Command) {
	c.Flags().BoolVar(&noAsync, "no-async", false, "load lessons one at a time")
	c.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", 0, "max lessons loaded at once")
}

func init() {
	addChunkingFlags(lessonsCmd)
	addWorkerFlags(lessonsCmd)
	rootCmd.AddCommand(lessonsCmd)
}

// pipelineOptions applies command-line overrides to the configured chunking.
func pipelineOptions() pipeline.Options {
	opts := cfg.PipelineOptions()
	if policy != "" {
		opts.Policy = pipeline.Policy(policy)
	}
	if target > 0 {
		opts.FragmentTarget = target
		opts.SentenceTarget = target
	}
	return opts
}

func workerOptions() worker.Options {
	opts := worker.Options{
		NoAsync:       cfg.Library.NoAsync || noAsync,
		MaxConcurrent: cfg.Library.MaxConcurrent,
		Probe:         cfg.Library.Probe,
		Pipeline:      pipelineOptions(),
	}
	if maxConcurrent > 0 {
		opts.MaxConcurrent = maxConcurrent
	}
	return opts
}

func runLessons(cmd *cobra.Command, args []string) error {
	var (
		pairs []library.Pair
		err   error
	)
	if len(args) == 1 {
		pairs, err = library.Scan(args[0])
	} else {
		pairs, err = newLibrary().Restore()
	}
	if err != nil {
		return err
	}
	return listLessons(cmd, pairs)
}

func listLessons(cmd *cobra.Command, pairs []library.Pair) error {
	out := cmd.OutOrStdout()
	if len(pairs) == 0 {
		fmt.Fprintln(out, "no lessons found")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lessons, err := worker.Run(ctx, pairs, workerOptions())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LESSON\tSECTIONS\tDURATION\tPLAYED")
	for _, l := range lessons {
		if l.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t%v\n", l.Pair.Name, l.Err)
			continue
		}
		played := "-"
		if tr, err := progress.Load(st, l.Pair.Name, progress.WithPrefix(cfg.Storage.PlayedPrefix)); err == nil {
			played = fmt.Sprintf("%d/%d", tr.CountIn(l.Sections()), len(l.Sections()))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			l.Pair.Name, len(l.Sections()), pipeline.FormatClock(l.Duration), played)
	}
	return w.Flush()
}
