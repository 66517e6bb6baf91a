package scopefsm

import (
	"fmt"
)

// requestTransition drives the transition algorithm. h is the handle the
// request came through (nil only for the initial entry at Start).
//
// The algorithm runs non-interruptibly once started. A synchronous GotoState
// made by entry logic mid-transition does not recurse: it parks the new
// target and the trampoline below abandons the rest of the current chain and
// restarts from the partially built path. The hop count bounds cycles of
// zero-duration states.
func (m *Machine) requestTransition(h *Handle, target Path) error {
	// Resolve the whole target before touching anything: an unknown prefix
	// must not cost the machine its live handles.
	if err := m.resolveTarget(target); err != nil {
		return err
	}
	if m.pending {
		if h != nil && h == m.entering {
			m.next = target
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrTransitionPending, m.current.String(), target.String())
	}
	m.pending = true
	defer func() {
		m.pending = false
		m.entering = nil
		m.next = nil
	}()

	from := m.current.String()
	m.traceTransitionStart(from, target.String())
	m.logger.Debug("transition", "class", m.class, "from", from, "to", target.String())

	for hops := 0; ; hops++ {
		if hops >= m.chainLimit {
			return fmt.Errorf("%w: %d states without settling, last target %s",
				ErrTransitionLoop, hops, target.String())
		}
		restart, err := m.shift(target)
		if err != nil {
			return err
		}
		if restart == nil {
			break
		}
		target = restart
	}

	if err := m.checkAllStateEvents(); err != nil {
		return err
	}

	m.traceTransitionEnd(from, m.current.String())
	m.scheduleNotify()
	return nil
}

// resolveTarget verifies entry logic is registered for every prefix of
// target. Restart targets are resolved the same way when their GotoState is
// parked, so teardown never begins toward a state that cannot be entered.
func (m *Machine) resolveTarget(target Path) error {
	for depth := range target {
		prefix := target[:depth+1].String()
		if _, ok := m.def.states[prefix]; !ok {
			return fmt.Errorf("%w: %q (entering %q)", ErrUnknownState, prefix, target.String())
		}
	}
	return nil
}

// shift moves the machine one hop toward target: leaf-first teardown of the
// levels being left, then entry of each new level under a fresh handle. It
// returns a non-nil path when some level's entry logic requested a further
// transition, abandoning the remaining levels of this hop.
func (m *Machine) shift(target Path) (Path, error) {
	keep := commonDepth(m.current, target)

	for depth := len(m.handles) - 1; depth >= keep; depth-- {
		m.logger.Debug("leaving state", "state", m.current.String())
		m.handles[depth].release()
		m.handles = m.handles[:depth]
		m.setCurrent(m.current[:depth])
	}

	for depth := keep; depth < len(target); depth++ {
		prefix := target[:depth+1]
		state, ok := m.def.states[prefix.String()]
		if !ok {
			return nil, fmt.Errorf("%w: %q (entering %q)", ErrUnknownState, prefix.String(), target.String())
		}

		h := &Handle{m: m, path: append(Path(nil), prefix...)}
		if len(state.ValidTransitions) > 0 {
			if err := h.ValidTransitions(state.ValidTransitions...); err != nil {
				return nil, err
			}
		}
		m.handles = append(m.handles, h)
		m.setCurrent(h.path)

		m.logger.Debug("entering state", "state", h.path.String())
		prev := m.entering
		m.entering = h
		err := state.Entry(h)
		m.entering = prev
		if err != nil {
			return nil, fmt.Errorf("enter %q: %w", h.path.String(), err)
		}

		if m.next != nil {
			next := m.next
			m.next = nil
			return next, nil
		}
	}
	return nil, nil
}

// checkAllStateEvents verifies that every registered all-state event has at
// least one live subscription somewhere in the handle stack. Runs after each
// settled transition.
func (m *Machine) checkAllStateEvents() error {
	for _, event := range m.def.allStateEvents {
		if !m.hasSubscription(event) {
			return fmt.Errorf("%w: event %q in state %q", ErrMissingAllStateHandler, event, m.current.String())
		}
	}
	return nil
}

func (m *Machine) hasSubscription(event string) bool {
	for _, h := range m.handles {
		if h.reg.hasSubscription(event) {
			return true
		}
	}
	return false
}
