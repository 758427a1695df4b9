// Package highlight decides which sentence unit of a section is being heard.
package highlight

import (
	"strings"

	"goodear/internal/pipeline"
)

// Span is one unit of a section's text and whether it is being played.
type Span struct {
	pipeline.Segment
	Active bool
}

// View is what a renderer needs to draw a section's text. When no unit
// overlaps the section, Spans is empty and Fallback holds the section text.
type View struct {
	Spans    []Span
	Fallback string
}

// Overlapping returns the units sharing time with section, in order.
func Overlapping(units []pipeline.Segment, section pipeline.Segment) []pipeline.Segment {
	var out []pipeline.Segment
	for _, u := range units {
		if u.Overlaps(section) {
			out = append(out, u)
		}
	}
	return out
}

// Resolve tags the units of section active when position falls in their
// half-open [Start, End) interval. At most one span is active; none is valid
// when position sits between units.
func Resolve(position float64, section pipeline.Segment, units []pipeline.Segment) View {
	inSection := Overlapping(units, section)
	if len(inSection) == 0 {
		return View{Fallback: section.Text}
	}

	spans := make([]Span, len(inSection))
	found := false
	for i, u := range inSection {
		spans[i] = Span{Segment: u}
		if !found && u.Contains(position) {
			spans[i].Active = true
			found = true
		}
	}
	return View{Spans: spans}
}

// Active returns the active span, if any.
func (v View) Active() (Span, bool) {
	for _, s := range v.Spans {
		if s.Active {
			return s, true
		}
	}
	return Span{}, false
}

// Lines renders one trimmed line per span, prefixing the active one with
// mark and the others with blanks of the same width.
func (v View) Lines(mark string) []string {
	if len(v.Spans) == 0 {
		if v.Fallback == "" {
			return nil
		}
		return []string{strings.TrimSpace(v.Fallback)}
	}

	pad := strings.Repeat(" ", len(mark))
	lines := make([]string, len(v.Spans))
	for i, s := range v.Spans {
		prefix := pad
		if s.Active {
			prefix = mark
		}
		lines[i] = prefix + strings.TrimSpace(s.Text)
	}
	return lines
}
