package pipeline

// Segment is a time-stamped piece of transcript text. It is used for raw
// fragments, sentence units and sections alike.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End - Start in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Overlaps reports whether s shares any time with other.
func (s Segment) Overlaps(other Segment) bool {
	return s.End > other.Start && s.Start < other.End
}

// Contains reports whether t falls in the half-open interval [Start, End).
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

// whisperDocument is the object form written by Whisper-style tools.
type whisperDocument struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}
