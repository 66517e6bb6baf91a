package scopefsm

import (
	"fmt"
	"log/slog"
	"time"
)

// Handle is the per-activation object passed to a state's entry logic. One
// handle exists per active hierarchy level; everything registered through it
// is released the instant the machine begins leaving that level, whether the
// transition fired from this handle or from a descendant.
//
// A handle may trigger at most one transition. Registration methods on a
// released handle panic: entry logic runs strictly before any teardown, so
// reaching a released handle means it was stored past its lifetime.
type Handle struct {
	m    *Machine
	path Path

	reg      registry
	allowed  map[string]bool
	used     bool
	released bool
}

// Machine returns the owning machine.
func (h *Handle) Machine() *Machine { return h.m }

// Data returns the machine's application data (see WithData).
func (h *Handle) Data() any { return h.m.data }

// Logger returns the machine's logger.
func (h *Handle) Logger() *slog.Logger { return h.m.logger }

// StateName returns the full dotted path this handle is active for.
func (h *Handle) StateName() string { return h.path.String() }

// GotoState requests a transition to the named state. It may be called
// synchronously from within the state's own entry logic. At most one
// transition may be triggered through a handle; a second call fails with
// ErrUseAfterTransition and has no effect on the machine.
func (h *Handle) GotoState(name string) error {
	if h.used {
		return fmt.Errorf("%w: %s -> %s", ErrUseAfterTransition, h.path.String(), name)
	}
	if h.released {
		return fmt.Errorf("%w: %s", ErrHandleReleased, h.path.String())
	}
	target, err := ParsePath(name)
	if err != nil {
		return err
	}
	if h.allowed != nil && !h.allowed[target.String()] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.path.String(), name)
	}
	h.used = true
	err = h.m.requestTransition(h, target)
	if err != nil && !h.released {
		// rejected before any teardown began; the handle keeps its shot
		h.used = false
	}
	return err
}

// GotoStateOn transitions to name when source emits event.
func (h *Handle) GotoStateOn(source EventSource, event, name string) Disposable {
	return h.On(source, event, func(...any) {
		h.m.callbackGoto(h, name)
	})
}

// GotoStateOnTimeout transitions to name after delay.
func (h *Handle) GotoStateOnTimeout(delay time.Duration, name string) Disposable {
	return h.Timeout(delay, func() {
		h.m.callbackGoto(h, name)
	})
}

// ValidTransitions restricts future GotoState calls from this handle to the
// given state names. It may be set at most once per handle.
func (h *Handle) ValidTransitions(names ...string) error {
	if h.released {
		return fmt.Errorf("%w: %s", ErrHandleReleased, h.path.String())
	}
	if h.allowed != nil {
		return fmt.Errorf("%w: %s", ErrValidTransitionsSet, h.path.String())
	}
	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		p, err := ParsePath(name)
		if err != nil {
			return err
		}
		allowed[p.String()] = true
	}
	h.allowed = allowed
	return nil
}

// On subscribes to a named event on source for the lifetime of this state
// level. The callback receives the emitter's arguments unchanged.
func (h *Handle) On(source EventSource, event string, fn func(args ...any)) Disposable {
	h.mustLive()
	s := &subscription{event: event}
	s.sub = source.Subscribe(event, func(args ...any) {
		if s.done {
			return
		}
		fn(args...)
	})
	h.reg.add(s)
	return s
}

// Timeout schedules fn once after delay. The returned Disposable cancels it
// early; cancelling is idempotent and a no-op after the timer fired or the
// level was torn down.
func (h *Handle) Timeout(delay time.Duration, fn func()) Disposable {
	h.mustLive()
	s := &scheduled{}
	s.timer = h.m.sched.AfterFunc(delay, func() {
		if s.done {
			return
		}
		s.done = true
		fn()
	})
	h.reg.add(s)
	return s
}

// Interval schedules fn every interval until cancelled or torn down.
func (h *Handle) Interval(interval time.Duration, fn func()) Disposable {
	h.mustLive()
	s := &scheduled{}
	s.timer = h.m.sched.RepeatFunc(interval, func() {
		if s.done {
			return
		}
		fn()
	})
	h.reg.add(s)
	return s
}

// Immediate schedules fn for the next turn of the scheduler.
func (h *Handle) Immediate(fn func()) Disposable {
	h.mustLive()
	s := &scheduled{}
	s.timer = h.m.sched.DeferFunc(func() {
		if s.done {
			return
		}
		s.done = true
		fn()
	})
	h.reg.add(s)
	return s
}

// Callback wraps fn for handing to arbitrary asynchronous APIs: before this
// level's teardown calls forward their arguments unchanged, afterwards they
// are silently dropped.
func (h *Handle) Callback(fn func(args ...any)) func(args ...any) {
	h.mustLive()
	g := &guard{fn: fn}
	h.reg.add(g)
	return g.call
}

func (h *Handle) mustLive() {
	if h.released {
		panic(fmt.Errorf("%w: %s", ErrHandleReleased, h.path.String()))
	}
}

// release tears down this level: every disposable is cancelled and the
// handle becomes inert.
func (h *Handle) release() {
	if h.released {
		return
	}
	h.released = true
	h.reg.releaseAll()
}
