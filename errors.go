package scopefsm

import "errors"

// All of these indicate a defect in the state machine's own wiring. They are
// returned (or raised, when there is no caller to return to) immediately and
// are never swallowed or retried.
var (
	// ErrMalformedStateName reports a state name with an empty path component.
	ErrMalformedStateName = errors.New("malformed state name")

	// ErrUnknownState reports a transition through a path prefix that has no
	// entry logic registered.
	ErrUnknownState = errors.New("unknown state")

	// ErrInvalidTransition reports a GotoState target outside the handle's
	// valid-transition allow-list.
	ErrInvalidTransition = errors.New("transition not allowed")

	// ErrUseAfterTransition reports a second GotoState through a handle that
	// already triggered a transition.
	ErrUseAfterTransition = errors.New("handle already triggered a transition")

	// ErrHandleReleased reports use of a handle whose state level has been
	// torn down.
	ErrHandleReleased = errors.New("handle released")

	// ErrValidTransitionsSet reports a second ValidTransitions call on the
	// same handle.
	ErrValidTransitionsSet = errors.New("valid transitions already set")

	// ErrMissingAllStateHandler reports an all-state event with no live
	// subscription after a transition settled.
	ErrMissingAllStateHandler = errors.New("missing all-state event handler")

	// ErrTransitionPending reports a transition trigger observed while
	// another transition is still in flight.
	ErrTransitionPending = errors.New("transition already in progress")

	// ErrTransitionLoop reports a synchronous transition chain that exceeded
	// the machine's chain limit.
	ErrTransitionLoop = errors.New("transition chain limit exceeded")
)
