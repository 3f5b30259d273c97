// Package mangle declares the Name Mangler capability the Table Emitter
// consumes and provides a reference implementation. Name mangling --
// deterministic conversion of human names to target-language-safe
// identifiers -- is an external collaborator's concern; the emitter only
// calls through this interface and never inspects the resulting
// identifiers beyond using them verbatim in emitted text.
package mangle

import (
	"strings"
	"unicode"
)

// NameMangler converts human-authored HSM names into identifiers safe for
// the target language. Implementations must be deterministic: the same
// input must always produce the same output within one emission, and
// distinct inputs should produce distinct outputs -- a non-injective
// mangler over the event space can collapse inheritance masking across
// distinct events.
type NameMangler interface {
	// MangleTypeName converts the HSM's own name into the generated type's
	// identifier.
	MangleTypeName(hsmName string) (string, error)
	// MangleStateEnumValue converts a state name into its enum value
	// identifier.
	MangleStateEnumValue(stateName string) (string, error)
	// MangleEventEnumValue converts a trigger/event name into its enum
	// value identifier.
	MangleEventEnumValue(triggerName string) (string, error)
	// MangleVarName converts a variable name into a field identifier.
	MangleVarName(name string) (string, error)

	// StartRoutineName, DispatchRoutineName and StateIDFieldName return the
	// fixed (not per-input-mangled) identifiers for the start routine, the
	// dispatch routine, and the state-id field of the generated type.
	StartRoutineName() string
	DispatchRoutineName() string
	StateIDFieldName() string
}

// Default is a reference NameMangler: it upper-cases and underscore-joins
// for enum values, and produces a conservative identifier for type/var
// names by replacing anything that is not a letter, digit, or underscore
// with an underscore and ensuring the result does not start with a digit.
type Default struct {
	// StatePrefix/EventPrefix are prepended to enum value identifiers, the
	// way generated C enums conventionally namespace their values to avoid
	// collisions with other enums in the same translation unit.
	StatePrefix string
	EventPrefix string
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "_"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// MangleTypeName implements NameMangler.
func (d Default) MangleTypeName(hsmName string) (string, error) {
	return sanitizeIdentifier(hsmName), nil
}

// MangleStateEnumValue implements NameMangler.
func (d Default) MangleStateEnumValue(stateName string) (string, error) {
	prefix := d.StatePrefix
	if prefix == "" {
		prefix = "STATE_"
	}
	return prefix + strings.ToUpper(sanitizeIdentifier(stateName)), nil
}

// MangleEventEnumValue implements NameMangler.
func (d Default) MangleEventEnumValue(triggerName string) (string, error) {
	prefix := d.EventPrefix
	if prefix == "" {
		prefix = "EVENT_"
	}
	return prefix + strings.ToUpper(sanitizeIdentifier(triggerName)), nil
}

// MangleVarName implements NameMangler.
func (d Default) MangleVarName(name string) (string, error) {
	return sanitizeIdentifier(name), nil
}

// StartRoutineName implements NameMangler.
func (d Default) StartRoutineName() string { return "Start" }

// DispatchRoutineName implements NameMangler.
func (d Default) DispatchRoutineName() string { return "DispatchEvent" }

// StateIDFieldName implements NameMangler.
func (d Default) StateIDFieldName() string { return "state_id" }
