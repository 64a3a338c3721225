package c4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildLinearModel(t *testing.T) *Model {
	t.Helper()
	m := New("linear")
	matchCalc := m.AddCalc("match", 1, func(q, tp int, ud UserData) int { return 1 }, nil, nil, ProtectNone)
	mid := m.AddState("M")
	_, err := m.AddTransition("start->M", m.Start(), mid, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("match", mid, mid, 1, 1, matchCalc, LabelMatch, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("M->end", mid, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	return m
}

func TestCloseSucceedsOnWellFormedModel(t *testing.T) {
	m := buildLinearModel(t)
	cm, err := m.Close()
	require.NoError(t, err)
	require.NotNil(t, cm)
}

func TestCloseRejectsUnreachableState(t *testing.T) {
	m := buildLinearModel(t)
	m.AddState("orphan")
	_, err := m.Close()
	require.Error(t, err)
}

func TestCloseRejectsCyclicSilentSubgraph(t *testing.T) {
	m := New("cyclic")
	a := m.AddState("A")
	b := m.AddState("B")
	_, err := m.AddTransition("start->A", m.Start(), a, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("A->B", a, b, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("B->A", b, a, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("B->end", b, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	_, err = m.Close()
	require.Error(t, err)
}

func TestAddTransitionRejectsZeroAdvanceMatch(t *testing.T) {
	m := New("bad-match")
	mid := m.AddState("M")
	_, err := m.AddTransition("silent-match", m.Start(), mid, 0, 0, -1, LabelMatch, nil)
	require.Error(t, err)
}

func TestCloseRejectsDuplicateOutgoingEdge(t *testing.T) {
	m := New("dup")
	a := m.AddState("A")
	_, err := m.AddTransition("start->A", m.Start(), a, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("A->end-1", a, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("A->end-2", a, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	_, err = m.Close()
	require.Error(t, err)
}

func TestSilentRankRespectsTopologicalOrder(t *testing.T) {
	m := buildLinearModel(t)
	cm, err := m.Close()
	require.NoError(t, err)
	require.Less(t, cm.SilentRank(m.Start()), cm.SilentRank(1))
}

func TestMutationAfterClosePanics(t *testing.T) {
	m := buildLinearModel(t)
	_, err := m.Close()
	require.NoError(t, err)
	require.Panics(t, func() { m.AddState("late") })
}
