package scopefsm

import (
	"fmt"
	"strings"
)

// Path is a state name decomposed into its ancestor-to-leaf components.
// "connected.busy" becomes ["connected", "busy"]: the machine is in
// "connected.busy" and, by containment, also in "connected".
type Path []string

// ParsePath splits a dotted state name into its components. Every component
// must be non-empty, so "", "a..b" and "a." are all rejected with
// ErrMalformedStateName.
func ParsePath(name string) (Path, error) {
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedStateName, name)
		}
	}
	return Path(parts), nil
}

// String joins the components back into the dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// HasPrefix reports whether prefix matches the leading components of p.
// Comparison is per component, so "con" is not a prefix of "connected".
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, component := range prefix {
		if p[i] != component {
			return false
		}
	}
	return true
}

// commonDepth returns the number of leading components equal between a and b.
// Handles at depths below this survive a transition from a to b; everything
// above it is torn down.
func commonDepth(a, b Path) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
