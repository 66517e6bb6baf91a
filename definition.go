package scopefsm

import (
	"fmt"

	"github.com/google/uuid"
)

// Definition holds an FSM class before building Machine instances: the
// entry-logic lookup keyed by full dotted state path, the all-state event
// names, and the initial state.
type Definition struct {
	class          string
	states         map[string]*State
	initial        string
	allStateEvents []string
}

// NewDefinition creates a definition builder for the named machine class.
func NewDefinition(class string) *Definition {
	return &Definition{
		class:  class,
		states: make(map[string]*State),
	}
}

// State registers entry logic for the full dotted state path. Sub-states are
// registered under their full path ("connected.busy") and require their
// ancestors ("connected") to be registered too.
func (d *Definition) State(name string, entry EntryFunc, opts ...StateOption) *Definition {
	s := &State{
		Name:  name,
		Entry: entry,
	}
	for _, opt := range opts {
		opt(s)
	}
	d.states[name] = s
	return d
}

// AllStateEvent declares event names every state must hold a live
// subscription for. The invariant is checked after each settled transition.
func (d *Definition) AllStateEvent(names ...string) *Definition {
	d.allStateEvents = append(d.allStateEvents, names...)
	return d
}

// Initial sets the initial state, which must be a single root-level
// component.
func (d *Definition) Initial(name string) *Definition {
	d.initial = name
	return d
}

// Validate checks the definition for errors
func (d *Definition) Validate() error {
	if d.initial == "" {
		return fmt.Errorf("no initial state defined")
	}
	initial, err := ParsePath(d.initial)
	if err != nil {
		return err
	}
	if len(initial) != 1 {
		return fmt.Errorf("initial state %q must be a root-level state", d.initial)
	}
	if _, ok := d.states[d.initial]; !ok {
		return fmt.Errorf("%w: initial state %q not defined", ErrUnknownState, d.initial)
	}

	for name, state := range d.states {
		if state.Entry == nil {
			return fmt.Errorf("state %q has no entry logic", name)
		}
		p, err := ParsePath(name)
		if err != nil {
			return err
		}
		// Every ancestor prefix needs its own entry logic.
		for depth := 1; depth < len(p); depth++ {
			prefix := p[:depth].String()
			if _, ok := d.states[prefix]; !ok {
				return fmt.Errorf("%w: state %q references undefined ancestor %q", ErrUnknownState, name, prefix)
			}
		}
		for _, target := range state.ValidTransitions {
			if _, err := ParsePath(target); err != nil {
				return fmt.Errorf("state %q: %w", name, err)
			}
		}
	}

	for _, event := range d.allStateEvents {
		if event == "" {
			return fmt.Errorf("empty all-state event name")
		}
	}

	return nil
}

// Build creates a Machine from the definition. The machine is inert until
// Start is called.
func (d *Definition) Build(opts ...MachineOption) (*Machine, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	m := &Machine{
		class:      d.class,
		id:         uuid.NewString(),
		def:        d,
		logger:     Logger,
		chainLimit: DefaultChainLimit,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.traceCreated()
	return m, nil
}
