// Package library finds lessons on disk and manages the imported lesson
// folder.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTranscript is returned when an audio file has no transcript next to it.
var ErrNoTranscript = errors.New("no transcript found")

var audioExts = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
}

// transcriptExts lists transcript extensions in order of preference.
var transcriptExts = []string{".srt", ".json"}

// Pair is an audio file and its transcript.
type Pair struct {
	Name       string
	Audio      string
	Transcript string
}

// IsAudio reports whether path has a playable audio extension.
func IsAudio(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// Scan lists the lessons in dir: every audio file with a transcript of the
// same base name. Audio without a transcript is skipped. Pairs are sorted
// by name.
func Scan(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	// lower-cased file name -> actual name
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files[strings.ToLower(e.Name())] = e.Name()
	}

	var pairs []Pair
	for _, e := range entries {
		if e.IsDir() || !IsAudio(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		transcript, ok := findTranscript(files, base)
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{
			Name:       base,
			Audio:      filepath.Join(dir, e.Name()),
			Transcript: filepath.Join(dir, transcript),
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Name < pairs[j].Name
	})
	return pairs, nil
}

// TranscriptFor returns the transcript next to an audio file.
func TranscriptFor(audio string) (string, error) {
	dir := filepath.Dir(audio)
	base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	for _, ext := range transcriptExts {
		p := filepath.Join(dir, base+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(audio), ErrNoTranscript)
}

func findTranscript(files map[string]string, base string) (string, bool) {
	for _, ext := range transcriptExts {
		if name, ok := files[strings.ToLower(base+ext)]; ok {
			return name, true
		}
	}
	return "", false
}
