package scopefsm

// Disposable is a cancellable registration owned by a state Handle: an event
// subscription, a timer, a deferred call, or a guarded callback. Dispose
// cancels the registration; calling it more than once is a no-op.
type Disposable interface {
	Dispose()
}

// registry collects the disposables created during one state activation so
// they can all be released when the machine leaves that level.
type registry struct {
	items    []Disposable
	released bool
}

func (r *registry) add(d Disposable) {
	r.items = append(r.items, d)
}

// releaseAll disposes every entry and clears the registry. Safe to call more
// than once; entries are disposed at most once.
func (r *registry) releaseAll() {
	if r.released {
		return
	}
	r.released = true
	for _, d := range r.items {
		d.Dispose()
	}
	r.items = nil
}

// hasSubscription reports whether a live (not individually cancelled)
// subscription for the exact event name exists in this registry. Used for
// the all-state event check.
func (r *registry) hasSubscription(event string) bool {
	for _, d := range r.items {
		if s, ok := d.(*subscription); ok && s.event == event && !s.done {
			return true
		}
	}
	return false
}

// subscription ties an EventSource registration to its handle's lifetime.
type subscription struct {
	event string
	sub   Subscription
	done  bool
}

func (s *subscription) Dispose() {
	if s.done {
		return
	}
	s.done = true
	s.sub.Unsubscribe()
}

// scheduled is a one-shot timer, repeating timer, or deferred call. The done
// flag doubles as the fired-during-teardown guard: a callback already posted
// by the scheduler finds done set and drops itself.
type scheduled struct {
	timer Timer
	done  bool
}

func (s *scheduled) Dispose() {
	if s.done {
		return
	}
	s.done = true
	s.timer.Stop()
}

// guard wraps an arbitrary callback so that invoking it after its handle's
// teardown is a no-op. Before teardown it forwards arguments unchanged.
type guard struct {
	fn   func(args ...any)
	done bool
}

func (g *guard) Dispose() {
	g.done = true
}

func (g *guard) call(args ...any) {
	if g.done {
		return
	}
	g.fn(args...)
}
