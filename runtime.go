package hsmgen

import (
	"github.com/dragomit/hsmgen/expand"
	"github.com/dragomit/hsmgen/mangle"
)

// emitRuntimeProtocol performs the Runtime-Protocol Emitter pass:
// dispatch_event, PerformTransition (the LCA routine),
// ExitUpTo/EnterDownTo, per-state CallStateEnter/CallStateExit switches,
// and start(). The LCA computation here is the emitted-code counterpart of
// the live pointer-walking LCA the teacher's state.go lineage performs at
// runtime (depth-equalize the deeper side, then co-walk both sides to the
// meeting point) -- generalized from walking live *State pointers to
// indexing the state_parent[]/state_depth[] constant arrays structural.go
// already emitted.
func emitRuntimeProtocol(w *IndentWriter, h *HSM, idx *IndexTables, entries []TransitionEntry, mangler mangle.NameMangler, expander expand.Expander, typeName string) error {
	doUsed := idx.DOUsed()
	startName := mangler.StartRoutineName()
	dispatchName := mangler.DispatchRoutineName()
	stateField := mangler.StateIDFieldName()

	if err := emitStateActionSwitch(w, h, idx, expander, mangler, "enter", typeName); err != nil {
		return err
	}
	if err := emitStateActionSwitch(w, h, idx, expander, mangler, "exit", typeName); err != nil {
		return err
	}

	// GetStateParent/GetStateDepth defend against an out-of-range state_id
	// by returning ROOT/0 respectively, so a malformed state_id still
	// terminates the LCA walk.
	w.StartBlock("static StateId GetStateParent(StateId s)")
	w.Printf("if (s < 0 || s >= %d) return ROOT;", idx.StateCount())
	w.Line("return state_parent[s];")
	w.EndBlock("")
	w.Blank()

	w.StartBlock("static uint8_t GetStateDepth(StateId s)")
	w.Printf("if (s < 0 || s >= %d) return 0;", idx.StateCount())
	w.Line("return state_depth[s];")
	w.EndBlock("")
	w.Blank()

	w.Printf("void %s_CallStateEnter(%s *self, StateId s);", typeName, typeName)
	w.Printf("void %s_CallStateExit(%s *self, StateId s);", typeName, typeName)
	w.Blank()

	// ExitUpTo walks from the current state upward, exiting each state up
	// to but excluding lca. Whenever the exited state is the direct child
	// of a region with a history pseudostate, the slot is updated --
	// shallow history remembers the exited child, deep history remembers
	// the original leaf.
	w.StartBlock(sig(typeName, "ExitUpTo", "StateId from, StateId lca"))
	w.Line("StateId s = from;")
	w.StartBlock("while (s != lca)")
	if err := recordHistoryOnExit(w, h, idx, mangler); err != nil {
		return err
	}
	w.Printf("%s_CallStateExit(self, s);", typeName)
	w.Line("s = GetStateParent(s);")
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()

	// EnterDownTo collects ancestors of to, up to but excluding lca, into a
	// fixed-size stack (capacity = HSM max depth + 1, known at emit time,
	// so no dynamic allocation is ever needed), then enters outermost to
	// innermost, ending with `to` itself.
	maxDepth := h.MaxDepth()
	w.StartBlock(sig(typeName, "EnterDownTo", "StateId lca, StateId to"))
	w.Printf("StateId path[%d];", maxDepth+1)
	w.Line("int n = 0;")
	w.Line("for (StateId s = to; s != lca; s = GetStateParent(s)) path[n++] = s;")
	w.StartBlock("for (int i = n - 1; i >= 0; i--)")
	w.Printf("%s_CallStateEnter(self, path[i]);", typeName)
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()

	if err := emitResolveHistoryTarget(w, idx, typeName); err != nil {
		return err
	}

	w.StartBlock(sig(typeName, "PerformTransition", "StateId from, StateId to, ActionId action_idx, int history_id"))
	w.StartBlock("if (from == to)")
	w.Printf("%s_CallStateExit(self, from);", typeName)
	w.Line("ExecuteAction(action_idx);")
	w.Printf("%s_CallStateEnter(self, to);", typeName)
	w.Printf("self->%s = to;", stateField)
	if doUsed {
		w.Printf("%s_%s(self, EVENT_DO);", typeName, dispatchName)
	}
	w.Line("return;")
	w.EndBlock("")
	w.Blank()

	w.Line("StateId effective_to = ResolveHistoryTarget(self, to, history_id);")
	w.Line("StateId srcDepth = GetStateDepth(from), dstDepth = GetStateDepth(effective_to);")
	w.Line("StateId a = from, b = effective_to;")
	w.StartBlock("while (srcDepth > dstDepth)")
	w.Line("a = GetStateParent(a); srcDepth--;")
	w.EndBlock("")
	w.StartBlock("while (dstDepth > srcDepth)")
	w.Line("b = GetStateParent(b); dstDepth--;")
	w.EndBlock("")
	w.StartBlock("while (a != b)")
	w.Line("a = GetStateParent(a);")
	w.Line("b = GetStateParent(b);")
	w.EndBlock("")
	w.Line("StateId lca = a;")
	w.Blank()
	w.Printf("%s_ExitUpTo(self, from, lca);", typeName)
	w.Line("ExecuteAction(action_idx);")
	w.Printf("%s_EnterDownTo(self, lca, effective_to);", typeName)
	w.Printf("self->%s = effective_to;", stateField)
	if doUsed {
		w.Printf("%s_%s(self, EVENT_DO);", typeName, dispatchName)
	}
	w.EndBlock("")
	w.Blank()

	w.StartBlock(sig(typeName, dispatchName, "EventId event_id"))
	w.Printf("for (int i = 0; i < %d; i++) {", len(entries))
	w.depth++
	w.Printf("if (transitions[i].current_state != self->%s) continue;", stateField)
	w.Line("if (transitions[i].trigger != event_id) continue;")
	w.Line("if (transitions[i].guard_index != GUARD_NONE && !EvaluateGuard(transitions[i].guard_index)) continue;")
	w.Printf("%s_PerformTransition(self, transitions[i].current_state, transitions[i].next_state, transitions[i].action_index, history_index[i]);", typeName)
	w.Line("return;")
	w.depth--
	w.Line("}")
	w.EndBlock("")
	w.Blank()

	w.StartBlock(sig(typeName, startName, ""))
	w.Printf("%s_CallStateEnter(self, ROOT);", typeName)
	initTarget := h.root.initial
	if initTarget == nil {
		return wrapf(ErrMissingInitialState, "root has no initial pseudostate")
	}
	if initTarget.actionText != "" {
		expanded, err := expander.ExpandAction(initTarget.actionText)
		if err != nil {
			return wrapf(ErrNameMangling, "expanding root initial action")
		}
		w.Raw(expanded)
		if len(expanded) == 0 || expanded[len(expanded)-1] != '\n' {
			w.buf.WriteByte('\n')
		}
	}
	initName, err := stateEnumName(idx, mangler, idx.StateID(initTarget.target))
	if err != nil {
		return err
	}
	w.Printf("self->%s = %s;", stateField, initName)
	w.Printf("%s_EnterDownTo(self, ROOT, %s);", typeName, initName)
	if doUsed {
		w.Printf("%s_%s(self, EVENT_DO);", typeName, dispatchName)
	}
	w.EndBlock("")
	w.Blank()

	return nil
}

func sig(typeName, method, params string) string {
	if params == "" {
		return "void " + typeName + "_" + method + "(" + typeName + " *self)"
	}
	return "void " + typeName + "_" + method + "(" + typeName + " *self, " + params + ")"
}

// recordHistoryOnExit emits, for the state about to be exited (the loop
// variable `s` in ExitUpTo), the history-slot updates for every history
// pseudostate whose parent is s's parent.
func recordHistoryOnExit(w *IndentWriter, h *HSM, idx *IndexTables, mangler mangle.NameMangler) error {
	for _, hp := range h.AllHistoryStates() {
		slot := idx.HistoryID(hp)
		parentName, err := stateEnumName(idx, mangler, idx.StateID(hp.parent))
		if err != nil {
			return err
		}
		w.Printf("if (GetStateParent(s) == %s) {", parentName)
		w.depth++
		if hp.kind == HistoryDeep {
			w.Printf("self->history_slot[%d] = from;", slot)
		} else {
			w.Printf("self->history_slot[%d] = s;", slot)
		}
		w.depth--
		w.Line("}")
	}
	return nil
}

func emitResolveHistoryTarget(w *IndentWriter, idx *IndexTables, typeName string) error {
	w.StartBlock("static StateId ResolveHistoryTarget(" + typeName + " *self, StateId to, int history_id)")
	w.Line("if (history_id < 0) return to;")
	w.Line("StateId remembered = self->history_slot[history_id];")
	w.Line("if (remembered != STATE_NONE) return remembered;")
	w.Line("return history_default[history_id];")
	w.EndBlock("")
	w.Blank()
	return nil
}

// emitStateActionSwitch emits CallStateEnter/CallStateExit: a switch over
// StateId dispatching to the expanded action text of each state's
// enter/exit behaviors, in declared order.
func emitStateActionSwitch(w *IndentWriter, h *HSM, idx *IndexTables, expander expand.Expander, mangler mangle.NameMangler, trigger, typeName string) error {
	method := "CallStateEnter"
	if trigger == "exit" {
		method = "CallStateExit"
	}
	w.StartBlock(sig(typeName, method, "StateId s"))
	w.StartBlock("switch (s)")
	for _, v := range h.AllVertices() {
		var texts []string
		for _, b := range v.behaviors {
			if b.IsTransition() {
				continue
			}
			for _, t := range b.triggers {
				if t == trigger {
					texts = append(texts, b.actionText)
				}
			}
		}
		if len(texts) == 0 {
			continue
		}
		name, err := stateEnumName(idx, mangler, idx.StateID(v))
		if err != nil {
			return err
		}
		w.Printf("case %s:", name)
		w.depth++
		for _, text := range texts {
			if text == "" {
				continue
			}
			expanded, err := expander.ExpandAction(text)
			if err != nil {
				return wrapf(ErrNameMangling, "expanding %s action for state %q", trigger, v.Name())
			}
			w.Raw(expanded)
			if len(expanded) == 0 || expanded[len(expanded)-1] != '\n' {
				w.buf.WriteByte('\n')
			}
		}
		w.Line("break;")
		w.depth--
	}
	w.Line("default: break;")
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()
	return nil
}
