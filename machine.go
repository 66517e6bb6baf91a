package scopefsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Machine is a running FSM instance. It owns the current state path and one
// live Handle per active hierarchy level, drives entry and teardown
// sequencing, and delivers deferred change notifications.
//
// All machine state is mutated only inside the transition algorithm, which
// runs to completion on the scheduler's execution context. Drive every
// occurrence (emitter events, external triggers) through that same context.
type Machine struct {
	class      string
	id         string
	def        *Definition
	data       any
	logger     *slog.Logger
	tracer     Tracer
	sched      Scheduler
	chainLimit int
	ownLoop    *Loop

	mu      sync.RWMutex
	current Path

	handles  []*Handle
	pending  bool
	entering *Handle
	next     Path
	started  bool

	listeners    []func(state string)
	notifyQueued bool
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*Machine)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithData sets the application data accessible via Handle.Data
func WithData(data any) MachineOption {
	return func(m *Machine) {
		m.data = data
	}
}

// WithScheduler sets the scheduler the machine registers timers and deferred
// calls with. Without it the machine starts a Loop of its own.
func WithScheduler(s Scheduler) MachineOption {
	return func(m *Machine) {
		m.sched = s
	}
}

// WithTracer sets the instrumentation hook.
func WithTracer(t Tracer) MachineOption {
	return func(m *Machine) {
		m.tracer = t
	}
}

// WithChainLimit overrides DefaultChainLimit for synchronous transition
// chains.
func WithChainLimit(n int) MachineOption {
	return func(m *Machine) {
		m.chainLimit = n
	}
}

// WithChangeListener registers a state-change listener at build time.
func WithChangeListener(fn func(state string)) MachineOption {
	return func(m *Machine) {
		m.listeners = append(m.listeners, fn)
	}
}

// ID returns the machine's opaque instance id, stable for its lifetime.
func (m *Machine) ID() string { return m.id }

// Class returns the class tag identifying the machine's definition.
func (m *Machine) Class() string { return m.class }

// OnChange registers fn for deferred change notification. After each settled
// transition chain fn receives the new full path string, on a later turn of
// the scheduler. By delivery time the machine may have moved on; re-query
// CurrentState if it matters.
func (m *Machine) OnChange(fn func(state string)) {
	m.listeners = append(m.listeners, fn)
}

// Start enters the initial state. Entry logic runs synchronously before
// Start returns.
func (m *Machine) Start() error {
	if m.started {
		return errors.New("machine already started")
	}
	m.started = true
	if m.sched == nil {
		m.ownLoop = NewLoop()
		m.ownLoop.Start(context.Background())
		m.sched = m.ownLoop
	}
	initial, err := ParsePath(m.def.initial)
	if err != nil {
		return err
	}
	return m.requestTransition(nil, initial)
}

// Stop shuts down the machine's own loop, if Start created one. Machines on
// an external scheduler have no teardown of their own; their disposables die
// with the scheduler.
func (m *Machine) Stop() {
	if m.ownLoop != nil {
		m.ownLoop.Stop()
	}
}

// CurrentState returns the current full state path as a dotted string.
func (m *Machine) CurrentState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.String()
}

// IsInState reports whether name is the current state or an ancestor of it:
// the machine in "connected.busy" is in "connected" too.
func (m *Machine) IsInState(name string) bool {
	p, err := ParsePath(name)
	if err != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.HasPrefix(p)
}

func (m *Machine) setCurrent(p Path) {
	m.mu.Lock()
	m.current = p
	m.mu.Unlock()
}

// callbackGoto is GotoState for scheduler and subscription callbacks, which
// have no caller to hand an error back to. Wiring errors here are still
// programmer errors; raising is the only loud option left.
func (m *Machine) callbackGoto(h *Handle, name string) {
	if err := h.GotoState(name); err != nil {
		panic(fmt.Errorf("scopefsm: %s[%s]: %w", m.class, m.id, err))
	}
}

func (m *Machine) scheduleNotify() {
	if m.notifyQueued {
		return
	}
	m.notifyQueued = true
	m.sched.DeferFunc(m.deliverNotify)
}

// deliverNotify runs on a later scheduler turn, after the triggering
// occurrence and any synchronous transition chain it caused have settled. One
// delivery covers the whole chain and carries the final path.
func (m *Machine) deliverNotify() {
	m.notifyQueued = false
	state := m.CurrentState()
	for _, fn := range m.listeners {
		fn(state)
	}
}
