package alignment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
)

// buildMatchModel returns a closed global model: START -> M -> (match self
// loop, Δq=Δt=1, score +5) -> END, mirroring spec.md §8 scenario A.
func buildMatchModel(t *testing.T) (*c4.ClosedModel, c4.TransitionID) {
	t.Helper()
	m := c4.New("match-only")
	m.ConfigureStart(c4.ScopeCorner, func(q, tp int, ud c4.UserData) int { return 0 }, nil)
	m.ConfigureEnd(c4.ScopeCorner, nil)
	mid := m.AddState("M")
	calc := m.AddCalc("match", 5, func(q, tp int, ud c4.UserData) int { return 5 }, nil, nil, c4.ProtectNone)
	_, err := m.AddTransition("start->M", m.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	matchID, err := m.AddTransition("match", mid, mid, 1, 1, calc, c4.LabelMatch, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("M->end", mid, m.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	cm, err := m.Close()
	require.NoError(t, err)
	return cm, matchID
}

// silentIDs returns buildMatchModel's silent start->M and M->end
// transition ids, which a replayable alignment carries around the match run.
func silentIDs(cm *c4.ClosedModel) (enter, exit c4.TransitionID) {
	for _, tr := range cm.Model.Transitions() {
		switch tr.Name {
		case "start->M":
			enter = tr.ID
		case "M->end":
			exit = tr.ID
		}
	}
	return enter, exit
}

func TestAddCoalescesRepeatedTransition(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 40)
	a.Add(matchID, 3)
	a.Add(matchID, 5)
	require.Len(t, a.Ops, 1)
	require.Equal(t, 8, a.Ops[0].Length)
}

func TestAddDropsZeroLengthRun(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	a := New(cm, c4.Region{}, 0)
	a.Add(matchID, 3)
	a.Add(matchID, -3)
	require.Empty(t, a.Ops)
}

func TestTotalAdvanceMatchesRegionLengths(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 40)
	a.Add(matchID, 8)
	q, tp := a.TotalAdvance()
	require.Equal(t, 8, q)
	require.Equal(t, 8, tp)
}

func TestReplayScoreMatchesScenarioA(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	enter, exit := silentIDs(cm)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 40)
	a.Add(enter, 1)
	a.Add(matchID, 8)
	a.Add(exit, 1)

	score, q, tp, state, err := a.Replay(nil)
	require.NoError(t, err)
	require.Equal(t, 40, score)
	require.Equal(t, 8, q)
	require.Equal(t, 8, tp)
	require.Equal(t, cm.End(), state)
}

func TestIsValidAcceptsScoreMatchingReplay(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	enter, exit := silentIDs(cm)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 40)
	a.Add(enter, 1)
	a.Add(matchID, 8)
	a.Add(exit, 1)

	ok, err := a.IsValid(nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsValidRejectsWrongScore(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	enter, exit := silentIDs(cm)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 999)
	a.Add(enter, 1)
	a.Add(matchID, 8)
	a.Add(exit, 1)

	ok, err := a.IsValid(nil)
	require.Error(t, err)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrScoreMismatch)
}

// buildSplitCodonModel returns a closed model with a 1:2-shaped
// split-codon pair (START -[pre]-> M -[post]-> END) plus a direct
// START...M -> END bypass, so a test can reach END having fired pre
// without its matching post.
func buildSplitCodonModel(t *testing.T) (cm *c4.ClosedModel, pre, post, direct c4.TransitionID) {
	t.Helper()
	m := c4.New("split-codon")
	m.ConfigureStart(c4.ScopeCorner, func(q, tp int, ud c4.UserData) int { return 0 }, nil)
	m.ConfigureEnd(c4.ScopeCorner, nil)
	mid := m.AddState("M")
	var err error
	pre, err = m.AddTransition("pre", m.Start(), mid, 1, 1, -1, c4.LabelSplitCodon,
		c4.SplitCodonMarker{Pair: "p1", Role: c4.SplitCodonPre})
	require.NoError(t, err)
	post, err = m.AddTransition("post", mid, m.End(), 2, 2, -1, c4.LabelSplitCodon,
		c4.SplitCodonMarker{Pair: "p1", Role: c4.SplitCodonPost})
	require.NoError(t, err)
	direct, err = m.AddTransition("direct", mid, m.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	cm, err = m.Close()
	require.NoError(t, err)
	return cm, pre, post, direct
}

func TestIsValidAcceptsMatchedSplitCodonPair(t *testing.T) {
	cm, pre, post, _ := buildSplitCodonModel(t)
	a := New(cm, c4.Region{QLength: 3, TLength: 3}, 0)
	a.Add(pre, 1)
	a.Add(post, 1)

	ok, err := a.IsValid(nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsValidRejectsUnclosedSplitCodon(t *testing.T) {
	cm, pre, _, direct := buildSplitCodonModel(t)
	a := New(cm, c4.Region{QLength: 1, TLength: 1}, 0)
	a.Add(pre, 1)
	a.Add(direct, 1)

	ok, err := a.IsValid(nil)
	require.Error(t, err)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestImportDerivedRewritesTransitionIDs(t *testing.T) {
	cm, matchID := buildMatchModel(t)
	a := New(cm, c4.Region{QLength: 8, TLength: 8}, 40)
	a.Add(matchID, 8)

	// A trivial "derived" model with a shifted transition-id space: derive
	// keeping everything, so ids line up 1:1, but via the proper API.
	derivedModel, dmap := cm.Model.Derive("derived", func(*c4.Transition) bool { return true })
	derivedClosed, err := derivedModel.Close()
	require.NoError(t, err)

	// Build an alignment against the derived model directly using its own
	// (remapped) transition id for "match".
	var derivedMatchID c4.TransitionID
	for did, orig := range dmap {
		if orig == matchID {
			derivedMatchID = did
		}
	}
	derivedAlignment := New(derivedClosed, a.Region, a.Score)
	derivedAlignment.Add(derivedMatchID, 8)

	imported, err := ImportDerived(derivedAlignment, cm, dmap)
	require.NoError(t, err)
	require.Equal(t, a.Ops, imported.Ops)
}
