package intron

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/viterbi"
)

func buildHostWithIntron(t *testing.T, p Params) *c4.ClosedModel {
	t.Helper()
	host := c4.New("host")
	host.ConfigureStart(c4.ScopeCorner, func(q, t int, ud c4.UserData) int { return 0 }, nil)
	host.ConfigureEnd(c4.ScopeCorner, nil)
	mid := host.AddState("M")
	placeholder, err := host.AddTransition("intron-site", mid, mid, 0, 0, -1, c4.LabelIntron, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("start->M", host.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("M->end", mid, host.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)

	sub := Build("i1", p)
	_, err = host.Insert(sub, placeholder)
	require.NoError(t, err)

	cm, err := host.Close()
	require.NoError(t, err)
	return cm
}

func constScore(v int) SpliceScore {
	return func(int, c4.UserData) (int, error) { return v, nil }
}

func TestBuildScoresDonorAndAcceptorAtOpenAndClose(t *testing.T) {
	host := c4.New("host")
	host.ConfigureStart(c4.ScopeCorner, func(q, t int, ud c4.UserData) int { return 0 }, nil)
	host.ConfigureEnd(c4.ScopeCorner, nil)
	mid := host.AddState("M")
	placeholder, err := host.AddTransition("intron-site", mid, mid, 0, 0, -1, c4.LabelIntron, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("start->M", host.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = host.AddTransition("M->end", mid, host.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)

	sub := Build("i1", Params{MinIntron: 2, MaxIntron: 10, OpenPenalty: -30, Donor5: constScore(50), Acceptor3: constScore(40)})
	_, err = host.Insert(sub, placeholder)
	require.NoError(t, err)

	cm, err := host.Close()
	require.NoError(t, err)
	require.NotNil(t, cm)

	// A bare 4-base intron: open penalty plus donor score at open, acceptor
	// score at close.
	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 4}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, -30+50+40, res.Score)
}

func TestBuildRejectsNonCanonicalViaImpossiblyLowScore(t *testing.T) {
	fail := func(int, c4.UserData) (int, error) { return 0, assertErr }
	m := Build("i", Params{MinIntron: 1, MaxIntron: 5, OpenPenalty: -10, Donor5: fail, Acceptor3: constScore(1)})
	cm, err := m.Close()
	require.NoError(t, err)
	require.NotNil(t, cm)

	// The intron is the only way to consume target bases in this host, so a
	// failing donor lookup leaves END unreachable.
	host := buildHostWithIntron(t, Params{MinIntron: 1, MaxIntron: 5, OpenPenalty: -10, Donor5: fail, Acceptor3: constScore(1)})
	res, err := viterbi.Run(viterbi.Task{Model: host, Region: c4.Region{TLength: 4}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted)
}

var assertErr = errSentinel{}

type errSentinel struct{}

func (errSentinel) Error() string { return "no canonical site" }

// TestBuildEnforcesTotalIntronLengthIncludingFlankingBases runs the actual
// DP engine (not just Close) over a host carrying a real intron.Build
// instance, so the donor/acceptor's 2-base consumption and the
// donor-coordinate shadow's length gate are both exercised numerically
// rather than merely checked for a non-nil closed model.
func TestBuildEnforcesTotalIntronLengthIncludingFlankingBases(t *testing.T) {
	cm := buildHostWithIntron(t, Params{MinIntron: 10, MaxIntron: 10, OpenPenalty: 0, Donor5: constScore(0), Acceptor3: constScore(0)})

	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 10}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted, "an intron whose donor+body+acceptor sums to exactly MinIntron must be accepted")

	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 9}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted, "an intron one base short of MinIntron (counting the flanking dinucleotides) must be rejected")

	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 11}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted, "an intron one base over MaxIntron must be rejected")
}

// TestBuildConsumesTwoTargetBasesAtEachFlank verifies the donor/acceptor
// transitions together consume exactly 4 target bases outside the body
// loop: with MinIntron==MaxIntron==4 the body loop must run zero times,
// so only a 4-base total region can be accepted.
func TestBuildConsumesTwoTargetBasesAtEachFlank(t *testing.T) {
	cm := buildHostWithIntron(t, Params{MinIntron: 4, MaxIntron: 4, OpenPenalty: 0, Donor5: constScore(0), Acceptor3: constScore(0)})

	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 4}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.True(t, res.Accepted, "a bare donor+acceptor with no body bases must span exactly 4 target bases")

	res, err = viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{TLength: 3}, Mode: viterbi.FindScore})
	require.NoError(t, err)
	require.False(t, res.Accepted)
}
