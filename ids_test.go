package hsmgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/hsmgen/mangle"
)

func TestBuildIndexTablesAssignsDenseStateIDs(t *testing.T) {
	h, v := buildSimpleHSM()
	require.NoError(t, h.Finalize())

	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	require.Equal(t, 3, idx.StateCount())
	assert.Equal(t, StateID(0), idx.StateID(v["s0"]))
	assert.Equal(t, StateID(1), idx.StateID(v["s1"]))
	assert.Equal(t, StateID(2), idx.StateID(v["s2"]))
	assert.Equal(t, v["s1"], idx.VertexByStateID(StateID(1)))
	assert.Equal(t, RootStateID, idx.StateID(h.Root()))
}

func TestBuildIndexTablesRegistersDeclaredEvents(t *testing.T) {
	h, _ := buildSimpleHSM()
	require.NoError(t, h.Finalize())

	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	require.Equal(t, 2, idx.EventCount())
	id, ok := idx.EventID("A")
	require.True(t, ok)
	assert.Equal(t, "A", idx.EventName(id))
	assert.False(t, idx.DOUsed())
}

func TestBuildIndexTablesRegistersDOWhenReferenced(t *testing.T) {
	h, v := buildSimpleHSM()
	v["s1"].AddTransition("DO", v["s2"])
	require.NoError(t, h.Finalize())

	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	assert.True(t, idx.DOUsed())
	_, ok := idx.EventID("DO")
	assert.True(t, ok)
}

func TestBuildIndexTablesDetectsMangledEventCollision(t *testing.T) {
	h := NewHSM()
	h.DeclareEvents("go-now", "go_now")
	s0 := h.Vertex("s0").Build()
	h.Root().Initial(s0).Build()
	require.NoError(t, h.Finalize())

	_, err := BuildIndexTables(h, mangle.Default{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameMangling))
}

func TestGuardIDReservesZeroForEmptyText(t *testing.T) {
	h, v := buildSimpleHSM()
	require.NoError(t, h.Finalize())
	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	b := v["s1"].behaviors[0]
	assert.Equal(t, NoGuard, idx.GuardID(b))
}

func TestGuardIDAssignedOnceSharedAcrossTriggers(t *testing.T) {
	h := NewHSM()
	h.DeclareEvents("A", "B")
	s0 := h.Vertex("s0").Build()
	h.Root().Initial(s0).Build()
	s1 := s0.Vertex("s1").Build()
	s2 := s0.Vertex("s2").Build()
	s0.Initial(s1).Build()
	b := s1.On("A", "B").Guard("cond").To(s2).Build()
	require.NoError(t, h.Finalize())

	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	first := idx.GuardID(b)
	second := idx.GuardID(b)
	assert.Equal(t, first, second)
	assert.NotEqual(t, NoGuard, first)
	assert.Equal(t, 1, idx.GuardCount())
}

func TestActionIDAssignedEvenForEmptyText(t *testing.T) {
	h, v := buildSimpleHSM()
	require.NoError(t, h.Finalize())
	idx, err := BuildIndexTables(h, mangle.Default{})
	require.NoError(t, err)

	b := v["s1"].behaviors[0]
	require.Empty(t, b.ActionText())
	assert.NotEqual(t, ActionNone, idx.ActionID(b))
}
