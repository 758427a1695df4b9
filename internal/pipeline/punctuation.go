package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentenceTerminators close a sentence unit.
var sentenceTerminators = map[rune]struct{}{
	'.': {}, '?': {},
}

// endsSentence reports whether text, ignoring trailing whitespace, ends with a
// sentence terminator.
func endsSentence(text string) bool {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	_, ok := sentenceTerminators[r]
	return ok
}

// joinTexts space-joins the texts of segs.
func joinTexts(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// mergeGroup collapses a non-empty group into one segment spanning it.
func mergeGroup(group []Segment) Segment {
	return Segment{
		Start: group[0].Start,
		End:   group[len(group)-1].End,
		Text:  joinTexts(group),
	}
}
