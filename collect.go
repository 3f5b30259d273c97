package hsmgen

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"go.uber.org/zap"

	"github.com/dragomit/hsmgen/mangle"
)

// TransitionEntry is one row of the emitted transition table: current
// state, trigger, next state, action index, guard index, plus an
// Inherited flag retained for diagnostics and invariant-testing (it is
// not itself emitted as a column -- the emitted record has exactly the
// five fields above it).
type TransitionEntry struct {
	Current   StateID
	Trigger   EventID
	Next      StateID
	ActionIdx ActionID
	GuardIdx  GuardID
	Inherited bool

	// History, when non-nil, means Next is the parent of a history
	// pseudostate and the runtime must resolve the actual target from the
	// history slot rather than entering Next itself.
	History *HistoryPseudostate
}

// CollectTransitions performs the Transition Collector pass: for every
// non-root vertex, own transition behaviors are emitted first (masking
// ancestor behaviors on the same trigger), then the ancestor chain is
// walked bottom-up emitting any not-yet-handled inherited transition.
// Declared order is preserved at every level; the first ancestor to
// declare a given trigger wins.
func CollectTransitions(h *HSM, idx *IndexTables, mangler mangle.NameMangler, logger *zap.Logger) ([]TransitionEntry, error) {
	logger = loggerOrDefault(logger)
	var entries []TransitionEntry

	mangledTrigger := func(name string) (string, error) {
		mangled, err := mangler.MangleEventEnumValue(name)
		if err != nil {
			return "", wrapf(ErrNameMangling, "trigger %q", name)
		}
		return mangled, nil
	}

	for _, s := range h.AllVertices() {
		// handled tracks which (mangled) trigger names already have a row
		// for this state, so that an ancestor's transition on the same
		// trigger is correctly masked. A linkedhashset gives O(1) membership
		// tests while preserving the insertion order in which triggers were
		// handled, the same concern github.com/emirpasic/gods serves for
		// item-set bookkeeping in lr-table construction in the reference
		// pack.
		handled := linkedhashset.New()

		for _, b := range s.behaviors {
			if !b.IsTransition() {
				continue
			}
			for _, trigger := range b.triggers {
				if trigger == "enter" || trigger == "exit" {
					logger.Debug("unrecognized trigger skipped: lifecycle trigger used as transition",
						zap.String("state", s.Name()), zap.String("trigger", trigger))
					continue
				}
				mangled, err := mangledTrigger(trigger)
				if err != nil {
					return nil, err
				}
				eventID, ok := idx.EventID(trigger)
				if !ok {
					continue
				}
				entries = append(entries, TransitionEntry{
					Current:   idx.StateID(s),
					Trigger:   eventID,
					Next:      idx.StateID(b.target),
					ActionIdx: idx.ActionID(b),
					GuardIdx:  idx.GuardID(b),
					Inherited: false,
					History:   b.history,
				})
				handled.Add(mangled)
			}
		}

		for a := s.parent; a != nil && !a.IsRoot(); a = a.parent {
			for _, b := range a.behaviors {
				if !b.IsTransition() {
					continue
				}
				for _, trigger := range b.triggers {
					if trigger == "enter" || trigger == "exit" {
						continue
					}
					mangled, err := mangledTrigger(trigger)
					if err != nil {
						return nil, err
					}
					if handled.Contains(mangled) {
						continue
					}
					eventID, ok := idx.EventID(trigger)
					if !ok {
						continue
					}
					entries = append(entries, TransitionEntry{
						Current:   idx.StateID(s),
						Trigger:   eventID,
						Next:      idx.StateID(b.target),
						ActionIdx: idx.ActionID(b),
						GuardIdx:  idx.GuardID(b),
						Inherited: true,
						History:   b.history,
					})
					handled.Add(mangled)
					logger.Debug("inherited transition expanded",
						zap.String("state", s.Name()), zap.String("trigger", trigger), zap.String("ancestor", a.Name()))
				}
			}
		}
	}

	return entries, nil
}
