package highlight

import (
	"reflect"
	"testing"

	"goodear/internal/pipeline"
)

func TestResolve_HalfOpenIntervals(t *testing.T) {
	units := []pipeline.Segment{
		{Start: 0, End: 2, Text: "A"},
		{Start: 2, End: 4, Text: "B"},
	}
	section := pipeline.Segment{Start: 0, End: 4, Text: "A B"}

	tests := []struct {
		position float64
		want     string
	}{
		{2.5, "B"},
		{2.0, "B"},
		{0, "A"},
		{1.999, "A"},
		{4.0, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		view := Resolve(tt.position, section, units)
		active, ok := view.Active()
		if tt.want == "" {
			if ok {
				t.Errorf("Resolve(%v): active = %q, want none", tt.position, active.Text)
			}
			continue
		}
		if !ok || active.Text != tt.want {
			t.Errorf("Resolve(%v): active = %q (%v), want %q", tt.position, active.Text, ok, tt.want)
		}

		count := 0
		for _, s := range view.Spans {
			if s.Active {
				count++
			}
		}
		if count != 1 {
			t.Errorf("Resolve(%v): %d active spans, want 1", tt.position, count)
		}
	}
}

func TestResolve_GapBetweenUnits(t *testing.T) {
	units := []pipeline.Segment{
		{Start: 0, End: 1, Text: "A"},
		{Start: 2, End: 3, Text: "B"},
	}
	view := Resolve(1.5, pipeline.Segment{Start: 0, End: 3}, units)
	if len(view.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(view.Spans))
	}
	if _, ok := view.Active(); ok {
		t.Error("expected no active span between units")
	}
}

func TestResolve_FiltersToSection(t *testing.T) {
	units := []pipeline.Segment{
		{Start: 0, End: 10, Text: "before"},
		{Start: 10, End: 21, Text: "spanning"},
		{Start: 21, End: 30, Text: "inside"},
		{Start: 30, End: 40, Text: "after"},
	}
	section := pipeline.Segment{Start: 20, End: 30, Text: "section"}

	view := Resolve(25, section, units)
	var texts []string
	for _, s := range view.Spans {
		texts = append(texts, s.Text)
	}
	if !reflect.DeepEqual(texts, []string{"spanning", "inside"}) {
		t.Errorf("span texts = %v, want [spanning inside]", texts)
	}
	if view.Fallback != "" {
		t.Errorf("Fallback = %q, want empty", view.Fallback)
	}
}

func TestResolve_Fallback(t *testing.T) {
	section := pipeline.Segment{Start: 50, End: 60, Text: "Section text."}
	view := Resolve(55, section, []pipeline.Segment{{Start: 0, End: 10, Text: "elsewhere"}})

	if len(view.Spans) != 0 {
		t.Errorf("expected no spans, got %d", len(view.Spans))
	}
	if view.Fallback != "Section text." {
		t.Errorf("Fallback = %q", view.Fallback)
	}
	if lines := view.Lines("> "); !reflect.DeepEqual(lines, []string{"Section text."}) {
		t.Errorf("Lines = %q", lines)
	}
}

func TestView_Lines(t *testing.T) {
	units := []pipeline.Segment{
		{Start: 0, End: 2, Text: " First. "},
		{Start: 2, End: 4, Text: "Second.\n"},
	}
	view := Resolve(3, pipeline.Segment{Start: 0, End: 4}, units)

	want := []string{"  First.", "> Second."}
	if got := view.Lines("> "); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}
