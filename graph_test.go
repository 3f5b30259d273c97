package hsmgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleHSM() (*HSM, map[string]*NamedVertex) {
	h := NewHSM()
	h.DeclareEvents("A", "B")

	s0 := h.Vertex("s0").Build()
	h.Root().Initial(s0).Build()

	s1 := s0.Vertex("s1").Build()
	s2 := s0.Vertex("s2").Build()
	s0.Initial(s1).Build()

	s1.AddTransition("A", s2)
	s2.AddTransition("B", s1)

	return h, map[string]*NamedVertex{"s0": s0, "s1": s1, "s2": s2}
}

func TestFinalizeValidGraph(t *testing.T) {
	h, _ := buildSimpleHSM()
	require.NoError(t, h.Finalize())
}

func TestFinalizeMissingInitialState(t *testing.T) {
	h := NewHSM()
	s0 := h.Vertex("s0").Build()
	h.Root().Initial(s0).Build()
	s0.Vertex("s1").Build()
	s0.Vertex("s2").Build()
	// s0 has children but no initial pseudostate of its own.

	err := h.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInitialState))
}

func TestFinalizeParallelRejected(t *testing.T) {
	h := NewHSM()
	s0 := h.Vertex("s0").Parallel().Build()
	h.Root().Initial(s0).Build()
	s0.Vertex("s1").Build()

	err := h.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableOverflowRisk))
}

func TestFinalizeForgottenBuilderPanics(t *testing.T) {
	h := NewHSM()
	h.Vertex("s0") // never calls .Build()

	assert.Panics(t, func() { _ = h.Finalize() })
}

func TestInitialBuilderConflictPanics(t *testing.T) {
	h := NewHSM()
	s0 := h.Vertex("s0").Build()
	s1 := s0.Vertex("s1").Build()
	s2 := s0.Vertex("s2").Build()
	s0.Initial(s1).Build()

	assert.Panics(t, func() { s0.Initial(s2).Build() })
}

func TestAllVerticesPreOrderDeterministic(t *testing.T) {
	h, v := buildSimpleHSM()
	got := h.AllVertices()
	require.Len(t, got, 3)
	assert.Equal(t, v["s0"], got[0])
	assert.Equal(t, v["s1"], got[1])
	assert.Equal(t, v["s2"], got[2])
}

func TestMaxDepth(t *testing.T) {
	h, _ := buildSimpleHSM()
	assert.Equal(t, 2, h.MaxDepth())
}

func TestHistoryPseudostateRegistration(t *testing.T) {
	h, v := buildSimpleHSM()
	hp := v["s0"].History(HistoryShallow)
	assert.Equal(t, HistoryShallow, hp.Kind())
	assert.Equal(t, v["s0"], hp.Parent())
	assert.Len(t, h.AllHistoryStates(), 1)
}
