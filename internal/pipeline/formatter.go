package pipeline

import (
	"fmt"
	"math"
	"strings"
)

// FormatSRTTime converts seconds to SRT time format HH:MM:SS,mmm. Negative
// times are clamped to zero.
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	hours := totalMs / 3_600_000
	minutes := totalMs / 60_000 % 60
	secs := totalMs / 1000 % 60
	millis := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatClock renders seconds as MM:SS, the way section bounds and elapsed
// time are shown to the listener. Minutes are not wrapped into hours.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// GenerateSRT writes segments as numbered SubRip blocks.
func GenerateSRT(segs []Segment) string {
	if len(segs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, seg := range segs {
		text := strings.Join(strings.Fields(seg.Text), " ")
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1, FormatSRTTime(seg.Start), FormatSRTTime(seg.End), text)
		if i < len(segs)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
