package scopefsm

import "log/slog"

// Tracer receives machine lifecycle probes: instance creation and transition
// start/end. Delivery is best-effort; a panic inside a tracer is caught and
// logged so instrumentation can never destabilize the machine.
type Tracer interface {
	MachineCreated(class, id string)
	TransitionStarted(class, id, from, to string)
	TransitionEnded(class, id, from, to string)
}

func (m *Machine) traceCreated() {
	if m.tracer == nil {
		return
	}
	defer m.recoverTracer()
	m.tracer.MachineCreated(m.class, m.id)
}

func (m *Machine) traceTransitionStart(from, to string) {
	if m.tracer == nil {
		return
	}
	defer m.recoverTracer()
	m.tracer.TransitionStarted(m.class, m.id, from, to)
}

func (m *Machine) traceTransitionEnd(from, to string) {
	if m.tracer == nil {
		return
	}
	defer m.recoverTracer()
	m.tracer.TransitionEnded(m.class, m.id, from, to)
}

func (m *Machine) recoverTracer() {
	if r := recover(); r != nil {
		m.logger.Warn("tracer panicked", "class", m.class, "id", m.id, "panic", r)
	}
}

// LogTracer is a Tracer that writes probes to a slog logger at debug level.
type LogTracer struct {
	Logger *slog.Logger
}

func (t LogTracer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return Logger
}

func (t LogTracer) MachineCreated(class, id string) {
	t.logger().Debug("fsm created", "class", class, "id", id)
}

func (t LogTracer) TransitionStarted(class, id, from, to string) {
	t.logger().Debug("fsm transition begin", "class", class, "id", id, "from", from, "to", to)
}

func (t LogTracer) TransitionEnded(class, id, from, to string) {
	t.logger().Debug("fsm transition end", "class", class, "id", id, "from", from, "to", to)
}
