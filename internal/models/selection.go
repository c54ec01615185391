package models

// SelectionSet maps candidate references to an included flag. It is built
// fresh each time the selector opens and is not safe for concurrent use.
type SelectionSet struct {
	order    []ImageReference
	included map[ImageReference]bool
}

// NewSelectionSet creates a selection over candidates with everything excluded
func NewSelectionSet(candidates []ImageReference) *SelectionSet {
	s := &SelectionSet{
		order:    make([]ImageReference, 0, len(candidates)),
		included: make(map[ImageReference]bool, len(candidates)),
	}
	for _, ref := range candidates {
		if _, seen := s.included[ref]; seen || ref.IsZero() {
			continue
		}
		s.order = append(s.order, ref)
		s.included[ref] = false
	}
	return s
}

// Toggle sets the included flag for ref. Unknown references are appended.
func (s *SelectionSet) Toggle(ref ImageReference, included bool) {
	if _, known := s.included[ref]; !known {
		s.order = append(s.order, ref)
	}
	s.included[ref] = included
}

// SetAll sets every candidate to included
func (s *SelectionSet) SetAll(included bool) {
	for _, ref := range s.order {
		s.included[ref] = included
	}
}

// IsIncluded reports the flag for ref
func (s *SelectionSet) IsIncluded(ref ImageReference) bool {
	return s.included[ref]
}

// Included returns the included references in candidate order
func (s *SelectionSet) Included() []ImageReference {
	out := make([]ImageReference, 0, len(s.order))
	for _, ref := range s.order {
		if s.included[ref] {
			out = append(out, ref)
		}
	}
	return out
}

// Candidates returns every reference in the set, in order
func (s *SelectionSet) Candidates() []ImageReference {
	out := make([]ImageReference, len(s.order))
	copy(out, s.order)
	return out
}

func (s *SelectionSet) Len() int {
	return len(s.order)
}

func (s *SelectionSet) IncludedCount() int {
	n := 0
	for _, v := range s.included {
		if v {
			n++
		}
	}
	return n
}
