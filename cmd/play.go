package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"goodear/internal/audio"
	"goodear/internal/highlight"
	"goodear/internal/library"
	"goodear/internal/pipeline"
	"goodear/internal/playback"
	"goodear/internal/progress"
)

var playCmd = &cobra.Command{
	Use:   "play <audio-file>",
	Short: "Play a lesson section by section",
	Long: `Play an audio file in sections built from its transcript. Type a command
and press enter:

  p      play / pause           a      toggle autoplay
  n, b   next / previous        t      show the text
  r      restart section        g N    go to section N
  <, >   rewind / forward       l      list sections
  [, ]   previous / next        h      help
         sentence               q      quit`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

var (
	transcriptPath string
	startSection   int
	autoplay       bool
	mute           bool
)

func init() {
	addChunkingFlags(playCmd)
	playCmd.Flags().StringVar(&transcriptPath, "transcript", "", "transcript file (default: next to the audio)")
	playCmd.Flags().IntVarP(&startSection, "section", "s", 1, "section to start at")
	playCmd.Flags().BoolVar(&autoplay, "autoplay", false, "continue into the next section automatically")
	playCmd.Flags().BoolVar(&mute, "mute", false, "play silently on a clock instead of the speaker")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	audioPath := args[0]
	if transcriptPath == "" {
		p, err := library.TranscriptFor(audioPath)
		if err != nil {
			return err
		}
		transcriptPath = p
	}

	t, res, err := pipeline.LoadAndProcess(transcriptPath, pipelineOptions())
	if err != nil {
		return err
	}
	if res.Empty() {
		return fmt.Errorf("%s: no sections found", transcriptPath)
	}
	if t.Skipped > 0 {
		slog.Warn("skipped malformed subtitle blocks", "count", t.Skipped)
	}

	lesson := progress.LessonName(audioPath)
	tracker, err := progress.Load(st, lesson, progress.WithPrefix(cfg.Storage.PlayedPrefix))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport, closeTransport := openTransport(ctx, audioPath, res.Sections[len(res.Sections)-1].End)
	defer closeTransport()

	session, err := playback.New(ctx, res.Sections, res.Sentences, transport,
		playback.WithInitialSection(startSection-1),
		playback.WithAutoplay(cfg.Playback.Autoplay || autoplay),
		playback.WithTickInterval(cfg.Playback.TickInterval),
		playback.WithSteps(cfg.Playback.Rewind, cfg.Playback.Forward),
		playback.WithEventBuffer(cfg.Playback.EventBuffer),
		playback.WithLogger(slog.Default().With("lesson", lesson)),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	c := &console{
		out:     cmd.OutOrStdout(),
		session: session,
		tracker: tracker,
		status:  rate.Sometimes{Interval: time.Second},
	}
	c.printSection(session.Snapshot())

	marks := make(chan playback.Event, cfg.Playback.EventBuffer)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tracker.Consume(gctx, marks)
	})
	g.Go(func() error {
		defer close(marks)
		for ev := range session.Events() {
			if ev.Kind == playback.EventPlayed || ev.Kind == playback.EventSectionEnded {
				select {
				case marks <- ev:
				case <-gctx.Done():
				}
			}
			c.render(ev)
		}
		return nil
	})

	lines := make(chan string)
	go readLines(cmd.InOrStdin(), lines)

	err = c.loop(ctx, lines)
	session.Close()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		slog.Warn("progress tracking stopped", "err", werr)
	}

	if err == nil && !quiet {
		fmt.Fprintf(c.out, "played %d/%d sections\n", tracker.CountIn(res.Sections), len(res.Sections))
	}
	return err
}

// openTransport opens the speaker, or a silent clock when muted or when the
// speaker cannot play the file.
func openTransport(ctx context.Context, path string, length float64) (playback.Transport, func()) {
	if !mute {
		p, err := audio.Open(ctx, path)
		if err == nil {
			return p, func() { p.Close() }
		}
		slog.Warn("audio unavailable, playing silently", "err", err)
	}
	clock := audio.NewClock(length)
	return clock, func() { clock.Close() }
}

// readLines never returns while the terminal is open; it is left running
// when the session ends.
func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// console turns typed commands into session calls and session events into
// output lines.
type console struct {
	out     io.Writer
	session *playback.Session
	tracker *progress.Tracker
	status  rate.Sometimes

	mu sync.Mutex
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) loop(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.session.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.exec(strings.TrimSpace(line))
			if err != nil {
				c.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *console) exec(line string) (quit bool, err error) {
	if line == "" {
		return false, nil
	}
	s := c.session
	fields := strings.Fields(line)

	switch fields[0] {
	case "p":
		err = s.Toggle()
	case "n":
		err = s.Next()
	case "b":
		err = s.Prev()
	case "r":
		err = s.Restart()
	case "<":
		err = s.Rewind(0)
	case ">":
		err = s.FastForward(0)
	case "[":
		err = s.PrevSentence()
	case "]":
		err = s.NextSentence()
	case "a":
		on := !s.State().Autoplay
		if err = s.SetAutoplay(on); err == nil {
			c.printf("autoplay %s\n", onOff(on))
		}
	case "t":
		c.printText(s.Snapshot())
	case "g":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: g <section>")
		}
		n, perr := strconv.Atoi(fields[1])
		if perr != nil {
			return false, fmt.Errorf("bad section number %q", fields[1])
		}
		err = s.Select(n - 1)
	case "l":
		c.printSections()
	case "h", "?":
		c.printf("%s\n", playCmd.Long)
	case "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (h for help)", fields[0])
	}
	return false, err
}

func (c *console) render(ev playback.Event) {
	switch ev.Kind {
	case playback.EventSectionChanged:
		c.printSection(ev.Snapshot)
	case playback.EventPlayed:
		c.printf("playing\n")
	case playback.EventPaused:
		c.printf("paused\n")
	case playback.EventPosition:
		if quiet || !ev.Snapshot.Playing {
			return
		}
		c.status.Do(func() { c.printStatus(ev.Snapshot) })
	}
}

func (c *console) printSection(snap playback.Snapshot) {
	c.printf("section %03d/%03d  %s–%s\n",
		snap.SectionIndex+1, snap.Sections,
		pipeline.FormatClock(snap.Section.Start), pipeline.FormatClock(snap.Section.End))
}

func (c *console) printStatus(snap playback.Snapshot) {
	const width = 20
	filled := int(snap.Progress() * width)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
	c.printf("%03d/%03d  [%s]  %s / %s\n",
		snap.SectionIndex+1, snap.Sections, bar,
		pipeline.FormatClock(snap.Elapsed()), pipeline.FormatClock(snap.Duration()))
}

func (c *console) printText(snap playback.Snapshot) {
	view := highlight.Resolve(snap.Position, snap.Section, c.session.Sentences(snap.SectionIndex))
	c.printf("%s\n", strings.Join(view.Lines("> "), "\n"))
}

func (c *console) printSections() {
	current := c.session.State().SectionIndex
	var b strings.Builder
	for i, sec := range c.session.Sections() {
		mark := " "
		if c.tracker.IsPlayed(sec) {
			mark = "*"
		}
		cursor := " "
		if i == current {
			cursor = ">"
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, sectionLine(i, sec))
	}
	c.printf("%s", b.String())
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
