package hsmgen

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the emitter's error taxonomy. Use errors.Is
// to test for a particular kind. Errors found in the graph are wrapped
// with context identifying the offending state or behavior by its
// original, pre-mangled name; a nil HSM yields ErrNullStateMachine
// unwrapped.
var (
	// ErrNullStateMachine is returned when Generate is called with a nil HSM,
	// or with a nil mangler or expander.
	ErrNullStateMachine = errors.New("hsmgen: state machine not bound")

	// ErrMissingInitialState is returned when a composite vertex (including
	// the implicit root) has no initial pseudostate, or the pseudostate's
	// target is not a NamedVertex.
	ErrMissingInitialState = errors.New("hsmgen: missing initial state")

	// ErrTableOverflowRisk is returned when the HSM contains orthogonal
	// (parallel) regions, which this emitter does not support.
	ErrTableOverflowRisk = errors.New("hsmgen: orthogonal regions not supported")

	// ErrNameMangling is returned when the Name Mangler rejects a name, or
	// when two distinct trigger names mangle to the same identifier,
	// breaking the injectivity inheritance masking depends on.
	ErrNameMangling = errors.New("hsmgen: name mangling failed")

	// ErrUnsupportedConfig is returned for any Config.Algorithm/Transpiler
	// value other than the ones this emitter implements.
	ErrUnsupportedConfig = errors.New("hsmgen: unsupported configuration")
)

func wrapf(base error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), base)
}
