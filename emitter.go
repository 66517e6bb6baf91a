package scopefsm

import "sync"

// EventSource is anything a machine can subscribe to for named events. The
// returned Subscription must keep a stable identity so the exact registration
// can be cancelled later.
type EventSource interface {
	Subscribe(event string, fn func(args ...any)) Subscription
}

// Subscription is one live event registration. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Emitter is a minimal in-process EventSource. Emit delivers synchronously,
// on the caller's execution context, to every subscriber of the event name.
type Emitter struct {
	mu   sync.Mutex
	subs map[string][]*emitterSub
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[string][]*emitterSub)}
}

// Subscribe registers fn for the named event.
func (e *Emitter) Subscribe(event string, fn func(args ...any)) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &emitterSub{owner: e, event: event, fn: fn}
	e.subs[event] = append(e.subs[event], s)
	return s
}

// Emit invokes every current subscriber of event with args. Subscribers
// removed during delivery (by an earlier subscriber's callback) are skipped.
func (e *Emitter) Emit(event string, args ...any) {
	e.mu.Lock()
	list := make([]*emitterSub, len(e.subs[event]))
	copy(list, e.subs[event])
	e.mu.Unlock()

	for _, s := range list {
		e.mu.Lock()
		removed := s.removed
		e.mu.Unlock()
		if !removed {
			s.fn(args...)
		}
	}
}

type emitterSub struct {
	owner   *Emitter
	event   string
	fn      func(args ...any)
	removed bool
}

func (s *emitterSub) Unsubscribe() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if s.removed {
		return
	}
	s.removed = true
	list := s.owner.subs[s.event]
	for i, other := range list {
		if other == s {
			s.owner.subs[s.event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
}
