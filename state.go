package scopefsm

// State is one state's definition: the full dotted path it answers to and
// the entry logic run each time that level is entered.
type State struct {
	Name  string
	Entry EntryFunc

	// ValidTransitions, when non-empty, is applied to every fresh handle for
	// this state before its entry logic runs. Entry logic that needs a
	// different allow-list must not also declare one here.
	ValidTransitions []string
}

// StateOption is a functional option for configuring a State
type StateOption func(*State)

// WithValidTransitions restricts transitions out of this state to the named
// targets.
func WithValidTransitions(names ...string) StateOption {
	return func(s *State) {
		s.ValidTransitions = append(s.ValidTransitions, names...)
	}
}
