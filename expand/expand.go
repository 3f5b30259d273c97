// Package expand declares the Expander capability the Table Emitter
// consumes and provides a reference passthrough implementation.
// Expansion -- substitution of user-visible identifier references in
// guard/action text into target-language accessors -- is an external
// collaborator's concern; the emitter treats the returned strings as
// opaque target-language fragments and never interprets them.
package expand

// Expander rewrites guard/action source text, substituting user-visible
// identifiers for target-language field/variable accessors. The emitter
// calls ExpandGuard/ExpandAction at most once per distinct guard/action
// index, so an Expander may cache or memoize expensively-computed
// expansions without needing its own deduplication.
type Expander interface {
	ExpandGuard(guardText string) (string, error)
	ExpandAction(actionText string) (string, error)
}

// Identity returns guard/action text unchanged. It is useful for tests and
// for hosts that perform expansion themselves before constructing the HSM
// graph handed to Generate.
type Identity struct{}

// ExpandGuard implements Expander.
func (Identity) ExpandGuard(guardText string) (string, error) { return guardText, nil }

// ExpandAction implements Expander.
func (Identity) ExpandAction(actionText string) (string, error) { return actionText, nil }
