package pipeline

// Default section lengths, in seconds, for the two chunking policies.
const (
	DefaultFragmentTarget = 25.0
	DefaultSentenceTarget = 30.0
)

// Policy names a chunking policy.
type Policy string

const (
	// PolicySentence groups sentence units, closing a section once it
	// reaches the target (ChunkSentences).
	PolicySentence Policy = "sentence"
	// PolicyFragment groups raw fragments, never letting a section grow
	// past the target (ChunkFragments).
	PolicyFragment Policy = "fragment"
)

// ChunkFragments groups raw fragments into sections of at most target seconds,
// measured from the group's first start to each candidate's end. The fragment
// that would overflow the group is not added; it starts the next section.
func ChunkFragments(frags []Segment, target float64) []Segment {
	if len(frags) == 0 {
		return nil
	}
	if target <= 0 {
		target = DefaultFragmentTarget
	}

	var sections []Segment
	var current []Segment
	groupStart := 0.0

	for _, frag := range frags {
		if len(current) == 0 {
			groupStart = frag.Start
			current = append(current, frag)
			continue
		}

		if frag.End-groupStart <= target {
			current = append(current, frag)
			continue
		}

		sections = append(sections, mergeGroup(current))
		groupStart = frag.Start
		current = []Segment{frag}
	}

	if len(current) > 0 {
		sections = append(sections, mergeGroup(current))
	}

	return sections
}

// ChunkSentences groups sentence units into sections. A unit is always added
// first; the section is closed as soon as it spans target seconds or more, so
// the unit that crossed the threshold ends the section.
func ChunkSentences(units []Segment, target float64) []Segment {
	if len(units) == 0 {
		return nil
	}
	if target <= 0 {
		target = DefaultSentenceTarget
	}

	var sections []Segment
	var current []Segment

	for _, unit := range units {
		current = append(current, unit)
		if current[len(current)-1].End-current[0].Start >= target {
			sections = append(sections, mergeGroup(current))
			current = nil
		}
	}

	if len(current) > 0 {
		sections = append(sections, mergeGroup(current))
	}

	return sections
}
