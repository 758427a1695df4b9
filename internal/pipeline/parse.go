package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies a transcript file format.
type Format string

const (
	FormatSRT  Format = "srt"
	FormatJSON Format = "json"
)

// FormatForPath selects the parser by extension: ".srt" is SubRip, anything
// else is treated as JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return FormatSRT
	}
	return FormatJSON
}

// Transcript is a decoded transcript file.
type Transcript struct {
	Path      string
	Format    Format
	Fragments []Segment
	// Skipped counts SRT blocks dropped as malformed.
	Skipped int
}

// Load reads a transcript file and decodes its raw fragments. A valid file
// with no usable fragments is not an error.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	t := &Transcript{Path: path, Format: FormatForPath(path)}
	switch t.Format {
	case FormatSRT:
		t.Fragments, t.Skipped = ParseSRT(data)
	default:
		frags, err := ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		t.Fragments = frags
	}
	return t, nil
}

// ParseSRT decodes SubRip text. Malformed blocks are skipped one by one and
// counted; they never abort the file.
func ParseSRT(data []byte) (segs []Segment, skipped int) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		seg, err := parseSRTBlock(block)
		if err != nil {
			skipped++
			continue
		}
		segs = append(segs, seg)
	}
	return segs, skipped
}

func parseSRTBlock(block string) (Segment, error) {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return Segment{}, fmt.Errorf("%w: %d lines", ErrMalformedBlock, len(lines))
	}

	times := strings.Split(lines[1], " --> ")
	if len(times) != 2 {
		return Segment{}, fmt.Errorf("%w: bad timing line %q", ErrMalformedBlock, lines[1])
	}
	start, err := parseSRTTime(times[0])
	if err != nil {
		return Segment{}, err
	}
	end, err := parseSRTTime(times[1])
	if err != nil {
		return Segment{}, err
	}

	return Segment{
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], " "),
	}, nil
}

// parseSRTTime converts "HH:MM:SS,mmm" to seconds. Hours and minutes that do
// not parse count as zero; seconds and milliseconds must be numbers.
func parseSRTTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: bad timecode %q", ErrMalformedBlock, s)
	}
	h, _ := strconv.ParseFloat(parts[0], 64)
	m, _ := strconv.ParseFloat(parts[1], 64)

	secParts := strings.Split(parts[2], ",")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("%w: bad timecode %q", ErrMalformedBlock, s)
	}
	sec, err := strconv.ParseFloat(secParts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad seconds in %q", ErrMalformedBlock, s)
	}
	ms, err := strconv.ParseFloat(secParts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad milliseconds in %q", ErrMalformedBlock, s)
	}

	return h*3600 + m*60 + sec + ms/1000, nil
}

// ParseJSON decodes an array of {start, end, text} records, or a Whisper
// document carrying them under "segments". Any decode failure rejects the
// whole input.
func ParseJSON(data []byte) ([]Segment, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc whisperDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return doc.Segments, nil
	}

	var segs []Segment
	if err := json.Unmarshal(trimmed, &segs); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return segs, nil
}
