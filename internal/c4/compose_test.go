package c4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKeepsOnlyFilteredTransitions(t *testing.T) {
	m := New("src")
	mid := m.AddState("M")
	matchCalc := m.AddCalc("match", 1, func(q, tp int, ud UserData) int { return 1 }, nil, nil, ProtectNone)
	gapCalc := m.AddCalc("gap", 0, func(q, tp int, ud UserData) int { return -1 }, nil, nil, ProtectNone)
	_, err := m.AddTransition("start->M", m.Start(), mid, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	matchID, err := m.AddTransition("match", mid, mid, 1, 1, matchCalc, LabelMatch, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("gap", mid, mid, 1, 0, gapCalc, LabelGap, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("M->end", mid, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	derived, dmap := m.Derive("no-gaps", func(t *Transition) bool { return t.Label != LabelGap })
	_, err = derived.Close()
	require.NoError(t, err)

	for _, dt := range derived.Transitions() {
		require.NotEqual(t, LabelGap, dt.Label)
	}
	// the surviving match transition must map back to the original's id.
	found := false
	for did, origID := range dmap {
		if derived.Transition(did).Label == LabelMatch {
			require.Equal(t, matchID, origID)
			found = true
		}
	}
	require.True(t, found)
}

func TestMakeStereoProducesTwoIndependentCopiesSharingTerminals(t *testing.T) {
	m := New("core")
	mid := m.AddState("M")
	calc := m.AddCalc("score", 1, func(q, tp int, ud UserData) int { return 1 }, nil, nil, ProtectNone)
	_, err := m.AddTransition("start->M", m.Start(), mid, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("step", mid, mid, 1, 1, calc, LabelMatch, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("M->end", mid, m.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	stereo := m.MakeStereo(".fwd", ".rev")
	cm, err := stereo.Close()
	require.NoError(t, err)
	require.Equal(t, stereo.Start(), cm.Start())
	require.Equal(t, stereo.End(), cm.End())

	var fwdSeen, revSeen bool
	for _, s := range stereo.States() {
		if s.Name == "M.fwd" {
			fwdSeen = true
		}
		if s.Name == "M.rev" {
			revSeen = true
		}
	}
	require.True(t, fwdSeen)
	require.True(t, revSeen)
	// both copies' transitions must target distinct (non-terminal) states.
	require.Len(t, stereo.States(), 4) // START, END, M.fwd, M.rev
}

func TestInsertSplicesSubmodelAtPlaceholder(t *testing.T) {
	host := New("host")
	placeholder, err := host.AddTransition("placeholder", host.Start(), host.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	sub := New("intron")
	donor := sub.AddState("donor")
	calc := sub.AddCalc("intron-body", 0, func(q, tp int, ud UserData) int { return 0 }, nil, nil, ProtectNone)
	_, err = sub.AddTransition("sub-start->donor", sub.Start(), donor, 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)
	_, err = sub.AddTransition("body", donor, donor, 0, 1, calc, LabelIntron, nil)
	require.NoError(t, err)
	_, err = sub.AddTransition("donor->sub-end", donor, sub.End(), 0, 0, -1, LabelNone, nil)
	require.NoError(t, err)

	added, err := host.Insert(sub, placeholder)
	require.NoError(t, err)
	require.Len(t, added, 3)

	cm, err := host.Close()
	require.NoError(t, err)
	require.NotNil(t, cm)

	var sawIntron bool
	for _, tr := range host.Transitions() {
		if tr.Label == LabelIntron {
			sawIntron = true
		}
	}
	require.True(t, sawIntron)
}

func TestInsertRejectsNonSilentPlaceholder(t *testing.T) {
	host := New("host")
	calc := host.AddCalc("c", 1, func(q, tp int, ud UserData) int { return 1 }, nil, nil, ProtectNone)
	placeholder, err := host.AddTransition("match", host.Start(), host.End(), 1, 1, calc, LabelMatch, nil)
	require.NoError(t, err)

	sub := New("sub")
	_, err = host.Insert(sub, placeholder)
	require.Error(t, err)
}
