package hsmgen

import (
	"github.com/dragomit/hsmgen/mangle"
)

// emitStructuralTables performs the Structural Table Emitter pass:
// transitions[], state_parent[], state_depth[], each serialized as a C99
// constant array. This pass never touches guard/action text -- only the
// dense integer IDs assigned by the Index Builders -- so it is pure text
// formatting, the same role diagram.go's Build() plays for PlantUML text,
// generalized here through IndentWriter instead of a hand-rolled prefix
// string.
func emitStructuralTables(w *IndentWriter, h *HSM, idx *IndexTables, entries []TransitionEntry, mangler mangle.NameMangler) error {
	w.Printf("static const Transition transitions[%d] = {", len(entries))
	w.depth++
	for _, e := range entries {
		stateName, err := stateEnumName(idx, mangler, e.Current)
		if err != nil {
			return err
		}
		nextName, err := stateEnumName(idx, mangler, e.Next)
		if err != nil {
			return err
		}
		eventName, err := mangler.MangleEventEnumValue(idx.EventName(e.Trigger))
		if err != nil {
			return wrapf(ErrNameMangling, "event %q", idx.EventName(e.Trigger))
		}
		w.Printf("{ %s, %s, %s, %d, %d }, // %s", stateName, eventName, nextName, e.ActionIdx, e.GuardIdx, inheritedComment(e.Inherited))
	}
	w.depth--
	w.Line("};")
	w.Blank()

	// history_index[] is a side table parallel to transitions[] by row
	// index, carrying the history pseudostate (if any) a row's target
	// actually resolves through at runtime. It is kept out of the
	// Transition record itself so that record stays exactly the five
	// fields above, in the order listed.
	w.Printf("static const int history_index[%d] = {", len(entries))
	w.depth++
	for _, e := range entries {
		if e.History == nil {
			w.Line("-1,")
			continue
		}
		w.Printf("%d,", idx.HistoryID(e.History))
	}
	w.depth--
	w.Line("};")
	w.Blank()

	// history_default[] holds, for each history pseudostate, the StateId
	// of its region's declared initial target. ResolveHistoryTarget falls
	// back to this when the history slot has never been populated, so
	// first entry through a history pseudostate lands on the region's
	// initial child rather than parked on the region itself.
	//
	// ResolveHistoryTarget references history_default[] unconditionally
	// (guarded at runtime by history_id < 0), so the array is always
	// declared, with a single unreachable placeholder row when the HSM
	// has no history pseudostates -- a zero-length C array is not
	// portable.
	histories := h.AllHistoryStates()
	size := len(histories)
	if size == 0 {
		size = 1
	}
	w.Printf("static const StateId history_default[%d] = {", size)
	w.depth++
	if len(histories) == 0 {
		rootName, err := stateEnumName(idx, mangler, RootStateID)
		if err != nil {
			return err
		}
		w.Printf("%s, // unreachable: no history pseudostates declared", rootName)
	}
	for _, hp := range histories {
		region := hp.Parent()
		if region.Initial() == nil {
			return wrapf(ErrMissingInitialState, "history pseudostate on %s has no initial pseudostate to fall back to", region.Name())
		}
		name, err := stateEnumName(idx, mangler, idx.StateID(region.Initial().Target()))
		if err != nil {
			return err
		}
		w.Printf("%s, // history on %s", name, region.Name())
	}
	w.depth--
	w.Line("};")
	w.Blank()

	w.Printf("static const StateId state_parent[%d] = {", idx.StateCount())
	w.depth++
	for id := 0; id < idx.StateCount(); id++ {
		v := idx.VertexByStateID(StateID(id))
		parentName, err := stateEnumName(idx, mangler, idx.StateID(v.Parent()))
		if err != nil {
			return err
		}
		w.Printf("%s, // %s", parentName, v.Name())
	}
	w.depth--
	w.Line("};")
	w.Blank()

	w.Printf("static const uint8_t state_depth[%d] = {", idx.StateCount())
	w.depth++
	for id := 0; id < idx.StateCount(); id++ {
		v := idx.VertexByStateID(StateID(id))
		w.Printf("%d, // %s", v.Depth(), v.Name())
	}
	w.depth--
	w.Line("};")
	w.Blank()

	return nil
}

func inheritedComment(inherited bool) string {
	if inherited {
		return "inherited"
	}
	return "own"
}

// stateEnumName resolves a StateID (or the RootStateID sentinel) to its
// mangled enum value identifier.
func stateEnumName(idx *IndexTables, mangler mangle.NameMangler, id StateID) (string, error) {
	if id == RootStateID {
		name, err := mangler.MangleStateEnumValue("ROOT")
		if err != nil {
			return "", wrapf(ErrNameMangling, "state %q", "ROOT")
		}
		return name, nil
	}
	v := idx.VertexByStateID(id)
	name, err := mangler.MangleStateEnumValue(v.Name())
	if err != nil {
		return "", wrapf(ErrNameMangling, "state %q", v.Name())
	}
	return name, nil
}
