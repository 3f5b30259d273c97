package hsmgen

import "github.com/dragomit/hsmgen/expand"

// emitBehaviorTables performs the Behavior Table Emitter pass:
// EvaluateGuard(idx) and ExecuteAction(idx) dispatch blocks. Each
// registered guard/action's expanded text is emitted exactly once, since
// IndexTables assigned exactly one id per distinct Behavior and this pass
// iterates ids 1..count in order -- the same Behavior always maps to one
// guard-id and one action-id, so expansion happens at most once per
// index.
func emitBehaviorTables(w *IndentWriter, idx *IndexTables, expander expand.Expander) error {
	w.StartBlock("static bool EvaluateGuard(GuardId idx)")
	w.StartBlock("switch (idx)")
	w.Line("case GUARD_NONE: return true;")
	for i := 1; i <= idx.GuardCount(); i++ {
		expanded, err := expander.ExpandGuard(idx.GuardText(GuardID(i)))
		if err != nil {
			return wrapf(ErrNameMangling, "expanding guard %d", i)
		}
		w.Printf("case GUARD_%d: return %s;", i, expanded)
	}
	w.Line("default: return false;")
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()

	w.StartBlock("static void ExecuteAction(ActionId idx)")
	w.StartBlock("switch (idx)")
	w.Line("case ACTION_NONE: break;")
	for i := 1; i <= idx.ActionCount(); i++ {
		text := idx.ActionText(ActionID(i))
		w.Printf("case ACTION_%d:", i)
		w.depth++
		if text != "" {
			expanded, err := expander.ExpandAction(text)
			if err != nil {
				return wrapf(ErrNameMangling, "expanding action %d", i)
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
