// Package scopefsm is a hierarchical finite-state-machine core for
// event-driven, single-threaded programs. A state's entry logic receives a
// Handle; every listener, timer, and deferred call registered through that
// Handle is released automatically the instant the machine leaves that state
// level, so a stale callback from a previous state can never fire.
package scopefsm

import "log/slog"

// EntryFunc is the entry logic for one state level. It runs synchronously
// when the level is entered and receives the fresh Handle for this
// activation. Returning an error aborts the transition.
type EntryFunc func(h *Handle) error

// DefaultChainLimit bounds how many states a single synchronous transition
// chain may pass through before it is treated as a cycle.
const DefaultChainLimit = 64

// Logger is the default logger used when none is provided
var Logger = slog.Default()
