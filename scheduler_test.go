package scopefsm

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestLoopPost(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	done := make(chan struct{})
	l.Post(func() { close(done) })
	waitFor(t, done, "posted func")
}

func TestLoopPostBeforeStartIsBuffered(t *testing.T) {
	l := NewLoop()
	done := make(chan struct{})
	l.Post(func() { close(done) })

	l.Start(context.Background())
	defer l.Stop()
	waitFor(t, done, "buffered func")
}

func TestLoopSerializesWork(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { order = append(order, i) })
	}
	l.Post(func() { close(done) })
	waitFor(t, done, "final post")

	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestLoopAfterFunc(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	done := make(chan struct{})
	l.AfterFunc(5*time.Millisecond, func() { close(done) })
	waitFor(t, done, "timer")
}

func TestLoopAfterFuncStop(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	var fired atomic.Bool
	tm := l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
	tm.Stop()
	tm.Stop()

	probe := make(chan struct{})
	l.AfterFunc(100*time.Millisecond, func() { close(probe) })
	waitFor(t, probe, "probe timer")
	assert.False(t, fired.Load())
}

func TestLoopRepeatFunc(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	hits := make(chan struct{}, 16)
	tm := l.RepeatFunc(5*time.Millisecond, func() {
		select {
		case hits <- struct{}{}:
		default:
		}
	})
	defer tm.Stop()

	waitFor(t, hits, "first tick")
	waitFor(t, hits, "second tick")
}

func TestLoopDeferFunc(t *testing.T) {
	l := NewLoop()
	l.Start(context.Background())
	defer l.Stop()

	done := make(chan struct{})
	l.DeferFunc(func() { close(done) })
	waitFor(t, done, "deferred call")
}

func TestLoopDeferFuncStopBeforeRun(t *testing.T) {
	l := NewLoop()

	var ran atomic.Bool
	tm := l.DeferFunc(func() { ran.Store(true) })
	tm.Stop()

	l.Start(context.Background())
	defer l.Stop()

	probe := make(chan struct{})
	l.Post(func() { close(probe) })
	waitFor(t, probe, "probe")
	assert.False(t, ran.Load())
}

func TestLoopStopWithoutStart(t *testing.T) {
	l := NewLoop()
	l.Stop()
}

func TestLoopStopViaContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()
	l.Stop()
}

func TestMachineOwnsLoopWhenNoScheduler(t *testing.T) {
	def := NewDefinition("test").
		State("a", noEntry).
		Initial("a")

	m, err := def.Build()
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Equal(t, "a", m.CurrentState())
	assert.NotNil(t, m.ownLoop)
}
