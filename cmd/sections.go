package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"goodear/internal/pipeline"
	"goodear/internal/progress"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <transcript>",
	Short: "Show how a transcript is split into sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

var (
	asSRT     bool
	sentences bool
)

func init() {
	addChunkingFlags(sectionsCmd)
	sectionsCmd.Flags().BoolVar(&asSRT, "srt", false, "print the sections as SRT")
	sectionsCmd.Flags().BoolVar(&sentences, "sentences", false, "list sentence units instead of sections")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	t, res, err := pipeline.LoadAndProcess(args[0], pipelineOptions())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	segs := res.Sections
	if sentences {
		segs = res.Sentences
	}
	if len(segs) == 0 {
		fmt.Fprintln(out, "no sections found")
		return nil
	}

	if asSRT {
		_, err := io.WriteString(out, pipeline.GenerateSRT(segs))
		return err
	}

	var tracker *progress.Tracker
	if !sentences {
		tracker, err = progress.Load(st, progress.LessonName(t.Path), progress.WithPrefix(cfg.Storage.PlayedPrefix))
		if err != nil {
			return err
		}
	}
	for i, s := range segs {
		mark := " "
		if tracker != nil && tracker.IsPlayed(s) {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s\n", mark, sectionLine(i, s))
	}
	if t.Skipped > 0 {
		fmt.Fprintf(out, "(%d malformed subtitle blocks skipped)\n", t.Skipped)
	}
	return nil
}

// sectionLine renders "007  01:05–01:32  text".
func sectionLine(i int, s pipeline.Segment) string {
	return fmt.Sprintf("%03d  %s–%s  %s",
		i+1, pipeline.FormatClock(s.Start), pipeline.FormatClock(s.End), strings.Join(strings.Fields(s.Text), " "))
}
