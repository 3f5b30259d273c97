package hsmgen

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dragomit/hsmgen/mangle"
)

// StateID is a dense index into the state table, or RootStateID for the
// implicit root sentinel.
type StateID int

// RootStateID is the sentinel StateID used for the HSM's implicit root.
const RootStateID StateID = -1

// EventID is a dense index into the declared event set, including the
// reserved completion/DO event when used.
type EventID int

// GuardID indexes into the guard-evaluation dispatch table; 0 is reserved
// for "no guard".
type GuardID int

// NoGuard is the reserved "always true" guard index.
const NoGuard GuardID = 0

// ActionID indexes into the action-execution dispatch table; 0 is reserved
// for "no-op". Every transition-bearing Behavior is still assigned its own
// ActionID even when its action text is empty -- ActionNone is only used by
// the history/initial no-op paths. This is a deliberate compatibility
// decision, not a size optimization left on the table: downstream
// toolchains may depend on the 1:1 row/ActionID correspondence.
type ActionID int

// ActionNone is the reserved no-op action index.
const ActionNone ActionID = 0

// HistoryID indexes a history pseudostate's runtime slot.
type HistoryID int

// IndexTables holds the dense, stable IDs assigned to states, events,
// history pseudostates, guards and actions for one emission. It is built
// once by BuildIndexTables and is immutable from the perspective of every
// later emission pass -- the emitter's former per-instance counters and
// behavior->id maps become locals of one collection pass that returns a
// single value.
//
// State/event registration order is recorded with
// github.com/wk8/go-ordered-map/v2 rather than a plain Go map, so that
// table serialization (structural.go) replays IDs in assignment order
// deterministically, without depending on Go's randomized map iteration
// order.
type IndexTables struct {
	states     *orderedmap.OrderedMap[*NamedVertex, StateID]
	stateOrder []*NamedVertex

	events     *orderedmap.OrderedMap[string, EventID]
	eventOrder []string

	histories     *orderedmap.OrderedMap[*HistoryPseudostate, HistoryID]
	historyOrder  []*HistoryPseudostate

	guards      *orderedmap.OrderedMap[*Behavior, GuardID]
	actions     *orderedmap.OrderedMap[*Behavior, ActionID]
	guardTexts  []string // index 1.. -> expanded-at-emit-time source text
	actionTexts []string

	doUsed bool
}

// StateID returns v's assigned StateID, or RootStateID if v is the root.
func (idx *IndexTables) StateID(v *NamedVertex) StateID {
	if v.IsRoot() {
		return RootStateID
	}
	id, _ := idx.states.Get(v)
	return id
}

// VertexByStateID returns the vertex assigned to id, or nil if id is out
// of range. Used by emission passes that need to walk states by index.
func (idx *IndexTables) VertexByStateID(id StateID) *NamedVertex {
	if id < 0 || int(id) >= len(idx.stateOrder) {
		return nil
	}
	return idx.stateOrder[id]
}

// StateCount returns the number of non-root states, S, such that emitted
// StateIds form the contiguous range [0, S).
func (idx *IndexTables) StateCount() int { return len(idx.stateOrder) }

// EventID returns the event's assigned EventID and whether it was found.
func (idx *IndexTables) EventID(name string) (EventID, bool) {
	return idx.events.Get(name)
}

// EventCount returns the number of declared events (including DO, if
// used).
func (idx *IndexTables) EventCount() int { return len(idx.eventOrder) }

// EventName returns the declared name for an EventID.
func (idx *IndexTables) EventName(id EventID) string {
	if int(id) < 0 || int(id) >= len(idx.eventOrder) {
		return ""
	}
	return idx.eventOrder[id]
}

// DOUsed reports whether the HSM references the completion/DO event.
func (idx *IndexTables) DOUsed() bool { return idx.doUsed }

// HistoryID returns hp's assigned runtime-slot index.
func (idx *IndexTables) HistoryID(hp *HistoryPseudostate) HistoryID {
	id, _ := idx.histories.Get(hp)
	return id
}

// HistoryCount returns the number of history pseudostates in the graph.
func (idx *IndexTables) HistoryCount() int { return len(idx.historyOrder) }

// GuardID lazily assigns (on first call for a given Behavior) and returns
// b's guard index: 0 if b has no guard text, else the next dense index.
// Repeated calls for the same Behavior (once per shared trigger) return
// the same index.
func (idx *IndexTables) GuardID(b *Behavior) GuardID {
	if b.guardText == "" {
		return NoGuard
	}
	if id, ok := idx.guards.Get(b); ok {
		return id
	}
	id := GuardID(len(idx.guardTexts) + 1)
	idx.guards.Set(b, id)
	idx.guardTexts = append(idx.guardTexts, b.guardText)
	return id
}

// ActionID lazily assigns and returns b's action index. Unlike GuardID,
// this is unconditional: b receives an index even when b.ActionText() is
// empty.
func (idx *IndexTables) ActionID(b *Behavior) ActionID {
	if id, ok := idx.actions.Get(b); ok {
		return id
	}
	id := ActionID(len(idx.actionTexts) + 1)
	idx.actions.Set(b, id)
	idx.actionTexts = append(idx.actionTexts, b.actionText)
	return id
}

// GuardText returns the raw source text registered for guard index id (id
// must be >= 1).
func (idx *IndexTables) GuardText(id GuardID) string {
	if id < 1 || int(id) > len(idx.guardTexts) {
		return ""
	}
	return idx.guardTexts[id-1]
}

// ActionText returns the raw source text registered for action index id
// (id must be >= 1).
func (idx *IndexTables) ActionText(id ActionID) string {
	if id < 1 || int(id) > len(idx.actionTexts) {
		return ""
	}
	return idx.actionTexts[id-1]
}

// GuardCount returns the number of distinct registered guards.
func (idx *IndexTables) GuardCount() int { return len(idx.guardTexts) }

// ActionCount returns the number of distinct registered actions.
func (idx *IndexTables) ActionCount() int { return len(idx.actionTexts) }

// BuildIndexTables performs the Index Builders pass: it assigns dense
// StateIds in deterministic pre-order, EventIds over the declared event
// set (plus DO if referenced), and HistoryIds over every history
// pseudostate. It also validates that the mangler is injective over the
// declared event set, since a collision there would silently merge two
// distinct triggers under inheritance masking.
func BuildIndexTables(h *HSM, mangler mangle.NameMangler) (*IndexTables, error) {
	idx := &IndexTables{
		states:    orderedmap.New[*NamedVertex, StateID](),
		events:    orderedmap.New[string, EventID](),
		histories: orderedmap.New[*HistoryPseudostate, HistoryID](),
		guards:    orderedmap.New[*Behavior, GuardID](),
		actions:   orderedmap.New[*Behavior, ActionID](),
	}

	for _, v := range h.AllVertices() {
		idx.states.Set(v, StateID(len(idx.stateOrder)))
		idx.stateOrder = append(idx.stateOrder, v)
	}

	mangledSeen := orderedmap.New[string, string]()
	registerEvent := func(name string) error {
		if _, ok := idx.events.Get(name); ok {
			return nil
		}
		mangled, err := mangler.MangleEventEnumValue(name)
		if err != nil {
			return wrapf(ErrNameMangling, "event %q", name)
		}
		if prevName, ok := mangledSeen.Get(mangled); ok && prevName != name {
			return wrapf(ErrNameMangling, "events %q and %q both mangle to %q", prevName, name, mangled)
		}
		mangledSeen.Set(mangled, name)
		idx.events.Set(name, EventID(len(idx.eventOrder)))
		idx.eventOrder = append(idx.eventOrder, name)
		return nil
	}

	for _, name := range h.Events() {
		if err := registerEvent(name); err != nil {
			return nil, err
		}
	}
	if usesDO(h) {
		if err := registerEvent("DO"); err != nil {
			return nil, err
		}
		idx.doUsed = true
	}

	for _, hp := range h.AllHistoryStates() {
		idx.histories.Set(hp, HistoryID(len(idx.historyOrder)))
		idx.historyOrder = append(idx.historyOrder, hp)
	}

	return idx, nil
}

// usesDO reports whether any behavior in the graph references the
// completion/DO event as a trigger.
func usesDO(h *HSM) bool {
	found := false
	var walk func(v *NamedVertex)
	walk = func(v *NamedVertex) {
		for _, b := range v.behaviors {
			for _, t := range b.triggers {
				if t == "DO" {
					found = true
				}
			}
		}
		for _, c := range v.children {
			walk(c)
		}
	}
	walk(h.root)
	return found
}
