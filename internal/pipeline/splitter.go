package pipeline

// AssembleSentences merges consecutive raw fragments into sentence units. A
// unit is closed after the fragment whose trimmed text ends with "." or "?";
// whatever remains at the end of the input becomes a final unit. Every
// fragment lands in exactly one unit.
func AssembleSentences(frags []Segment) []Segment {
	if len(frags) == 0 {
		return nil
	}

	var units []Segment
	var current []Segment

	for _, frag := range frags {
		current = append(current, frag)
		if endsSentence(frag.Text) {
			units = append(units, mergeGroup(current))
			current = nil
		}
	}

	if len(current) > 0 {
		units = append(units, mergeGroup(current))
	}

	return units
}
