package optimal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
)

type testData struct {
	query, target []byte
	match, mismatch int
}

func buildGlobalModel(t *testing.T) *c4.ClosedModel {
	t.Helper()
	m := c4.New("global")
	m.ConfigureStart(c4.ScopeCorner, func(q, tp int, ud c4.UserData) int { return 0 }, nil)
	m.ConfigureEnd(c4.ScopeCorner, nil)
	calc := m.AddCalc("match", 5, func(q, tp int, raw c4.UserData) int {
		d := raw.(*testData)
		if d.query[q] == d.target[tp] {
			return d.match
		}
		return d.mismatch
	}, nil, nil, c4.ProtectNone)
	mid := m.AddState("M")
	_, err := m.AddTransition("start->M", m.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("match", mid, mid, 1, 1, calc, c4.LabelMatch, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("M->end", mid, m.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	cm, err := m.Close()
	require.NoError(t, err)
	return cm
}

func TestAlignUsesFullSpaceWhenBudgetAllows(t *testing.T) {
	cm := buildGlobalModel(t)
	ud := &testData{query: []byte("ACGTACGT"), target: []byte("ACGTACGT"), match: 5, mismatch: -4}
	d := NewDriver(cm, ud, 1<<30, 0)

	al, ok, err := d.Align(c4.Region{QLength: 8, TLength: 8})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 40, al.Score)
}

func TestReducedSpacePathMatchesFullSpaceScoreAndOps(t *testing.T) {
	cm := buildGlobalModel(t)
	ud := &testData{query: []byte("ACGTACGTACGTACGT"), target: []byte("ACGTACGTACGTACGT"), match: 5, mismatch: -4}

	full := NewDriver(cm, ud, 1<<30, 0)
	fullAl, ok, err := full.Align(c4.Region{QLength: 16, TLength: 16})
	require.NoError(t, err)
	require.True(t, ok)

	reduced := NewDriver(cm, ud, 1, 0) // force reduced-space on every region
	reducedAl, ok, err := reduced.Align(c4.Region{QLength: 16, TLength: 16})
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, fullAl.Score, reducedAl.Score) // property 2
	require.Equal(t, fullAl.Ops, reducedAl.Ops)
}

func TestAlignReportsNoAlignmentBelowThreshold(t *testing.T) {
	cm := buildGlobalModel(t)
	ud := &testData{query: []byte("ACGTACGT"), target: []byte("TTTTTTTT"), match: 5, mismatch: -4}
	d := NewDriver(cm, ud, 1<<30, 1000) // impossible threshold

	_, ok, err := d.Align(c4.Region{QLength: 8, TLength: 8})
	require.NoError(t, err)
	require.False(t, ok)
}
