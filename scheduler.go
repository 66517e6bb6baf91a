package scopefsm

import (
	"context"
	"time"
)

// Timer is a scheduled call that can be cancelled. Stop is idempotent and is
// a no-op once the call has run (or, for repeating timers, stops further
// runs).
type Timer interface {
	Stop()
}

// Scheduler is the contract the hosting runtime provides: one-shot timers,
// repeating timers, and deferred (next-turn) calls. All callbacks must be
// delivered on the same cooperative execution context as the machine's other
// occurrences.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	RepeatFunc(d time.Duration, fn func()) Timer
	DeferFunc(fn func()) Timer
}

// Loop is the default Scheduler: a single-goroutine run queue. Wall-clock
// timers post their callbacks back onto the queue, so everything the machine
// does runs serialized on the loop goroutine.
type Loop struct {
	queue  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a loop. Posted work is buffered until Start is called.
func NewLoop() *Loop {
	return &Loop{queue: make(chan func(), 128)}
}

// Start begins draining the queue on a new goroutine. The loop stops when
// ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run()
}

// Stop cancels the loop and waits for the loop goroutine to exit.
func (l *Loop) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post submits fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	if l.ctx == nil {
		l.queue <- fn
		return
	}
	select {
	case l.queue <- fn:
	case <-l.ctx.Done():
	}
}

// AfterFunc schedules fn once after d, delivered on the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return wallTimer{time.AfterFunc(d, func() { l.Post(fn) })}
}

// RepeatFunc schedules fn every d, delivered on the loop, until stopped.
func (l *Loop) RepeatFunc(d time.Duration, fn func()) Timer {
	parent := l.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	go func() {
		tick := time.NewTicker(d)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				l.Post(fn)
			}
		}
	}()
	return cancelTimer{cancel}
}

// DeferFunc schedules fn for the next turn of the loop.
func (l *Loop) DeferFunc(fn func()) Timer {
	d := &deferredCall{fn: fn}
	l.Post(d.run)
	return d
}

type wallTimer struct {
	t *time.Timer
}

func (w wallTimer) Stop() { w.t.Stop() }

type cancelTimer struct {
	cancel context.CancelFunc
}

func (c cancelTimer) Stop() { c.cancel() }

// deferredCall is a queued closure with a cancellation flag. The flag is only
// touched on the loop's execution context, like every other machine-owned
// piece of state.
type deferredCall struct {
	fn      func()
	stopped bool
}

func (d *deferredCall) run() {
	if d.stopped {
		return
	}
	d.fn()
}

func (d *deferredCall) Stop() { d.stopped = true }
