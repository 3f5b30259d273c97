package hsmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/hsmgen/mangle"
)

func TestEmitStructuralTablesFiveFieldRows(t *testing.T) {
	h, _ := buildSimpleHSM()
	entries, idx := mustCollect(t, h)

	w := NewIndentWriter()
	require.NoError(t, emitStructuralTables(w, h, idx, entries, mangle.Default{}))
	out := w.String()

	assert.Contains(t, out, "static const Transition transitions[2] = {")
	for _, e := range entries {
		assert.True(t, strings.Contains(out, "{ STATE_S1, EVENT_A, STATE_S2,") || strings.Contains(out, "{ STATE_S2, EVENT_B, STATE_S1,"),
			"row for state %v not found verbatim", e.Current)
	}
	assert.Contains(t, out, "// own")
}

func TestEmitStructuralTablesHistoryIndexSideTable(t *testing.T) {
	h, v := buildSimpleHSM()
	hp := v["s0"].History(HistoryShallow)
	v["s2"].On("B").ToHistory(hp).Build()
	entries, idx := mustCollect(t, h)

	w := NewIndentWriter()
	require.NoError(t, emitStructuralTables(w, h, idx, entries, mangle.Default{}))
	out := w.String()

	assert.Contains(t, out, "static const int history_index[")
	// one row should resolve through the history slot (index 0), the rest are -1
	assert.Contains(t, out, "0,")
	assert.Contains(t, out, "-1,")
}

func TestEmitStructuralTablesHistoryDefaultFallsBackToRegionInitial(t *testing.T) {
	h, v := buildSimpleHSM()
	hp := v["s0"].History(HistoryShallow)
	v["s2"].On("B").ToHistory(hp).Build()
	entries, idx := mustCollect(t, h)

	w := NewIndentWriter()
	require.NoError(t, emitStructuralTables(w, h, idx, entries, mangle.Default{}))
	out := w.String()

	// s0's declared initial target is s1, so an unpopulated history slot
	// (history_slot[0] == STATE_NONE, the Init()-time default) must fall
	// back to STATE_S1, never to STATE_S0 (the region itself).
	assert.Contains(t, out, "static const StateId history_default[1] = {")
	assert.Contains(t, out, "STATE_S1, // history on s0")
}

func TestEmitStructuralTablesStateParentAndDepth(t *testing.T) {
	h, _ := buildSimpleHSM()
	entries, idx := mustCollect(t, h)

	w := NewIndentWriter()
	require.NoError(t, emitStructuralTables(w, h, idx, entries, mangle.Default{}))
	out := w.String()

	assert.Contains(t, out, "static const StateId state_parent[3] = {")
	assert.Contains(t, out, "static const uint8_t state_depth[3] = {")
	assert.Contains(t, out, "STATE_S0, // s1")
	assert.Contains(t, out, "1, // s0")
	assert.Contains(t, out, "2, // s1")
}

func TestStateEnumNameResolvesRootSentinel(t *testing.T) {
	h, _ := buildSimpleHSM()
	_, idx := mustCollect(t, h)

	name, err := stateEnumName(idx, mangle.Default{}, RootStateID)
	require.NoError(t, err)
	assert.Equal(t, "STATE_ROOT", name)
}
