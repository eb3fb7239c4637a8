package kanban

// Change reports a selection mutation. Previous is the count before it.
type Change struct {
	Count    int
	Previous int
}

// Emptied reports whether the selection went from non-empty to empty, the
// moment any open bulk-action menu must close.
func (c Change) Emptied() bool { return c.Previous > 0 && c.Count == 0 }

// DragGuard tells the selection which card is being dragged.
type DragGuard interface {
	Dragging(dni string) bool
}

// Selection is the multi-select set of candidate cards. It is the only
// owner of that state; callers mutate it through Toggle and Clear.
type Selection struct {
	order    []string
	refs     map[string]Ref
	guard    DragGuard
	onChange func(Change)
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{refs: make(map[string]Ref)}
}

// SetGuard installs the drag guard consulted by Toggle.
func (s *Selection) SetGuard(g DragGuard) { s.guard = g }

// OnChange registers the callback run after every mutation.
func (s *Selection) OnChange(fn func(Change)) { s.onChange = fn }

// Toggle adds ref if absent and removes it if present. It is a no-op while
// the card is mid-drag. The return value reports whether the set changed.
func (s *Selection) Toggle(ref Ref) bool {
	if ref.DNI == "" {
		return false
	}
	if s.guard != nil && s.guard.Dragging(ref.DNI) {
		return false
	}
	prev := len(s.order)
	if _, ok := s.refs[ref.DNI]; ok {
		s.remove(ref.DNI)
	} else {
		s.refs[ref.DNI] = ref
		s.order = append(s.order, ref.DNI)
	}
	s.notify(prev)
	return true
}

// prune removes dni whatever the drag guard says. Used when the card has
// left the board.
func (s *Selection) prune(dni string) bool {
	if _, ok := s.refs[dni]; !ok {
		return false
	}
	prev := len(s.order)
	s.remove(dni)
	s.notify(prev)
	return true
}

func (s *Selection) remove(dni string) {
	delete(s.refs, dni)
	for i, k := range s.order {
		if k == dni {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Clear empties the set. Safe to call at any time.
func (s *Selection) Clear() {
	prev := len(s.order)
	s.order = nil
	s.refs = make(map[string]Ref)
	s.notify(prev)
}

// List returns the selected DNIs in insertion order.
func (s *Selection) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Refs returns the selected references in insertion order.
func (s *Selection) Refs() []Ref {
	out := make([]Ref, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.refs[k])
	}
	return out
}

func (s *Selection) Contains(dni string) bool {
	_, ok := s.refs[dni]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

func (s *Selection) notify(prev int) {
	if s.onChange != nil {
		s.onChange(Change{Count: len(s.order), Previous: prev})
	}
}
