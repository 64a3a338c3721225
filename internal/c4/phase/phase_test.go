package phase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/c4/intron"
	"github.com/nfweeks/c4align/internal/viterbi"
)

func constSplice(v int) intron.SpliceScore {
	return func(int, c4.UserData) (int, error) { return v, nil }
}

func buildHostWithPhase(t *testing.T, p Params) *c4.ClosedModel {
	t.Helper()
	host := c4.New("host")
	host.ConfigureStart(c4.ScopeCorner, func(q, t int, ud c4.UserData) int { return 0 }, nil)
	host.ConfigureEnd(c4.ScopeCorner, nil)
	mid := host.AddState("M")
	placeholder, err := host.AddTransition("phase-site", mid, mid, 0, 0, -1, c4.LabelIntron, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("start->M", host.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("M->end", mid, host.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)

	sub := Build("p1", p)
	_, err = host.Insert(sub, placeholder)
	require.NoError(t, err)

	cm, err := host.Close()
	require.NoError(t, err)
	return cm
}

func TestBuildClosesWithAllThreePaths(t *testing.T) {
	p := Params{
		Intron:       intron.Params{MinIntron: 4, MaxIntron: 4, OpenPenalty: 0, Donor5: constSplice(0), Acceptor3: constSplice(0)},
		QueryAdvance: 3,
		Phase1:       func(entryT, q, t int, ud c4.UserData) int { return 10 },
		Phase2:       func(entryT, q, t int, ud c4.UserData) int { return 20 },
	}
	cm := buildHostWithPhase(t, p)
	require.NotNil(t, cm)
}

// TestDirectPathAcceptsPlainIntron exercises the 0:0 path: a 4-base
// donor+acceptor intron with no split codon, no extra query advance.
func TestDirectPathAcceptsPlainIntron(t *testing.T) {
	p := Params{
		Intron:       intron.Params{MinIntron: 4, MaxIntron: 4, OpenPenalty: 0, Donor5: constSplice(0), Acceptor3: constSplice(0)},
		QueryAdvance: 3,
		Phase1:       func(entryT, q, t int, ud c4.UserData) int { return 10 },
		Phase2:       func(entryT, q, t int, ud c4.UserData) int { return 20 },
	}
	cm := buildHostWithPhase(t, p)

	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 4}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted)
}

// TestSplitPathsAdvanceQueryWithDNAAxis verifies the 1:2/2:1 paths consume
// exactly QueryAdvance query bases and (preT+intron+postT) target bases
// when QueryAdvance==3 (a DNA-axis query whose codon bases are themselves
// split across the intron).
func TestSplitPathsAdvanceQueryWithDNAAxis(t *testing.T) {
	p := Params{
		Intron:       intron.Params{MinIntron: 4, MaxIntron: 4, OpenPenalty: 0, Donor5: constSplice(0), Acceptor3: constSplice(0)},
		QueryAdvance: 3,
		Phase1:       func(entryT, q, t int, ud c4.UserData) int { return 10 },
		Phase2:       func(entryT, q, t int, ud c4.UserData) int { return 20 },
	}
	cm := buildHostWithPhase(t, p)

	// phase1 (1:2): 1 + 4 (intron) + 2 = 7 target bases, 3 query bases.
	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 3, TLength: 7}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted)

	// phase2 (2:1): 2 + 4 (intron) + 1 = 7 target bases, 3 query bases too.
	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 3, TLength: 7}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted)

	// wrong query length: neither the direct path (0 query bases) nor
	// either split path (3 query bases) can reach QLength==2.
	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 2, TLength: 7}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted)
}

// TestSplitPathsChargeWholeResidueAtPostWithProteinAxis verifies that when
// QueryAdvance==1 (a protein-axis query) the pre transition advances zero
// query positions and the post transition alone charges the single
// indivisible residue.
func TestSplitPathsChargeWholeResidueAtPostWithProteinAxis(t *testing.T) {
	p := Params{
		Intron:       intron.Params{MinIntron: 4, MaxIntron: 4, OpenPenalty: 0, Donor5: constSplice(0), Acceptor3: constSplice(0)},
		QueryAdvance: 1,
		Phase1:       func(entryT, q, t int, ud c4.UserData) int { return 10 },
		Phase2:       func(entryT, q, t int, ud c4.UserData) int { return 20 },
	}
	cm := buildHostWithPhase(t, p)

	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 1, TLength: 7}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted)

	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 3, TLength: 7}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted)
}
