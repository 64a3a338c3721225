package modeltype

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/config"
	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/subst"
	"github.com/nfweeks/c4align/internal/viterbi"
)

func testContext(t *testing.T, query, target string) *Context {
	t.Helper()
	cfg := config.Defaults()
	cfg.DNAMatrix = subst.NewDNAMatrix(5, -4)

	alpha := seqview.NewAlphabet(seqview.DNA)
	q, err := seqview.NewSequence("q", "", []byte(query), alpha, seqview.Forward, nil)
	require.NoError(t, err)
	tg, err := seqview.NewSequence("t", "", []byte(target), alpha, seqview.Forward, nil)
	require.NoError(t, err)

	return &Context{Config: cfg, Query: q, Target: tg}
}

func TestGetReturnsErrorForUnknownModelType(t *testing.T) {
	_, err := Get("not-a-model-type")
	require.Error(t, err)
}

func TestNamesListsAllTwelveModelTypes(t *testing.T) {
	require.Len(t, Names(), 12)
}

func TestUngappedScoresExactMatch(t *testing.T) {
	build, err := Get("ungapped")
	require.NoError(t, err)
	cm, err := build(config.Defaults())
	require.NoError(t, err)

	ctx := testContext(t, "ACGTACGT", "ACGTACGT")
	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 8, TLength: 8}, Mode: viterbi.FindPath, UserData: ctx})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, 40, res.Score)
}

func TestAffineGlobalPrefersGapOverMismatchRun(t *testing.T) {
	cfg := config.Defaults()
	cfg.DNAMatrix = subst.NewDNAMatrix(5, -4)
	build, err := Get("affine:global")
	require.NoError(t, err)
	cm, err := build(cfg)
	require.NoError(t, err)

	ctx := testContext(t, "ACGTACGT", "ACGTCGT") // one base deleted in target
	res, err := viterbi.Run(viterbi.Task{Model: cm, Region: c4.Region{QLength: 8, TLength: 7}, Mode: viterbi.FindPath, UserData: ctx})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	// 7 matches (35) and one query-gap base (open -12 + extend -4) = 19;
	// trailing mismatches instead would score 4*5 - 3*4 - 16 = -8.
	require.Equal(t, 19, res.Score)
}
