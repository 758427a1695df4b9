package pipeline

import (
	"fmt"
)

// Options configures Process.
type Options struct {
	Policy         Policy
	FragmentTarget float64
	SentenceTarget float64
}

// DefaultOptions returns the sentence policy with default targets.
func DefaultOptions() Options {
	return Options{
		Policy:         PolicySentence,
		FragmentTarget: DefaultFragmentTarget,
		SentenceTarget: DefaultSentenceTarget,
	}
}

// Result holds every derivation of one transcript load. Nothing is cached
// between loads.
type Result struct {
	Fragments []Segment
	Sentences []Segment
	Sections  []Segment
}

// Empty reports whether the transcript produced no sections.
func (r *Result) Empty() bool {
	return len(r.Sections) == 0
}

// Process derives sentence units and playback sections from raw fragments.
func Process(frags []Segment, opts Options) (*Result, error) {
	res := &Result{
		Fragments: frags,
		Sentences: AssembleSentences(frags),
	}

	switch opts.Policy {
	case PolicySentence, "":
		res.Sections = ChunkSentences(res.Sentences, opts.SentenceTarget)
	case PolicyFragment:
		res.Sections = ChunkFragments(frags, opts.FragmentTarget)
	default:
		return nil, fmt.Errorf("unknown chunking policy %q", opts.Policy)
	}

	return res, nil
}

// LoadAndProcess loads a transcript file and segments it.
func LoadAndProcess(path string, opts Options) (*Transcript, *Result, error) {
	t, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := Process(t.Fragments, opts)
	if err != nil {
		return nil, nil, err
	}
	return t, res, nil
}
