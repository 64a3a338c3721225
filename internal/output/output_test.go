package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/c4/modeltype"
	"github.com/nfweeks/c4align/internal/config"
	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/subst"
	"github.com/nfweeks/c4align/internal/viterbi"
)

func ungappedAlignment(t *testing.T, query, target string) (*c4.ClosedModel, *modeltype.Context, *viterbi.Result) {
	t.Helper()
	cfg := config.Defaults()
	cfg.DNAMatrix = subst.NewDNAMatrix(5, -4)

	build, err := modeltype.Get("ungapped")
	require.NoError(t, err)
	cm, err := build(cfg)
	require.NoError(t, err)

	alpha := seqview.NewAlphabet(seqview.DNA)
	q, err := seqview.NewSequence("q1", "query one", []byte(query), alpha, seqview.Forward, nil)
	require.NoError(t, err)
	tg, err := seqview.NewSequence("t1", "target one", []byte(target), alpha, seqview.Forward, nil)
	require.NoError(t, err)

	ctx := &modeltype.Context{Config: cfg, Query: q, Target: tg}
	res, err := viterbi.Run(viterbi.Task{
		Model: cm, Region: c4.Region{QLength: len(query), TLength: len(target)},
		Mode: viterbi.FindPath, UserData: ctx,
	})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	return cm, ctx, res
}

// scenario A of spec.md §8: ungapped DNA match gives score 40 and a
// single CIGAR "M 8" run.
func TestWriteCigarScenarioA(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	require.Equal(t, 40, res.Score)

	cigar := WriteCigar(res.Alignment, ctx.Query, ctx.Target)
	require.Contains(t, cigar, "sugar: q1 0 8 + t1 0 8 + 40")
	require.Contains(t, cigar, "M 8")
}

func TestSugarRoundTrip(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	line := WriteSugar(res.Alignment, ctx.Query, ctx.Target)

	parsed, err := ParseSugar(line)
	require.NoError(t, err)

	reserialized := formatSugar(parsed)
	require.Equal(t, line, reserialized)
}

func TestParseSugarRejectsMalformedLine(t *testing.T) {
	_, err := ParseSugar("not-a-sugar-line")
	require.ErrorIs(t, err, ErrFormat)

	_, err = ParseSugar("sugar: q1 0 8 + t1 0 8 +") // missing score
	require.ErrorIs(t, err, ErrFormat)
}

func TestWriteVulgarCoalescesRuns(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	vulgar := WriteVulgar(res.Alignment, ctx.Query, ctx.Target)
	require.Contains(t, vulgar, "M 8 8")
}

func TestRenderRYOSubstitutesAlignmentTokens(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	out, err := RenderRYO("%qi vs %ti: score=%s", RYOContext{
		Alignment: res.Alignment, Query: ctx.Query, Target: ctx.Target, ModelName: "ungapped", Rank: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "q1 vs t1: score=40", out)
}

func TestRenderRYOIteratesTransitionBlock(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	out, err := RenderRYO("ops:{%Pn }", RYOContext{
		Alignment: res.Alignment, Query: ctx.Query, Target: ctx.Target,
	})
	require.NoError(t, err)
	require.Contains(t, out, "ops:")
	require.NotEmpty(t, out)
}

func TestRenderRYORejectsNestedBraces(t *testing.T) {
	_, err := RenderRYO("{a{b}}", RYOContext{})
	require.ErrorIs(t, err, ErrFormat)
}

func TestRenderRYORejectsUnterminatedBrace(t *testing.T) {
	_, err := RenderRYO("{a", RYOContext{})
	require.ErrorIs(t, err, ErrFormat)
}

func TestWriteGFFEmitsSimilarityForUngappedModel(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	gff := WriteGFF(res.Alignment, ctx.Query, ctx.Target, GFFOptions{Source: "ungapped"})
	require.Contains(t, gff, "t1\tungapped\tsimilarity\t1\t8\t40\t+\t.")
}

func TestRenderRYORejectsUnknownToken(t *testing.T) {
	_, ctx, res := ungappedAlignment(t, "ACGTACGT", "ACGTACGT")
	_, err := RenderRYO("%zzz", RYOContext{Alignment: res.Alignment, Query: ctx.Query, Target: ctx.Target})
	require.ErrorIs(t, err, ErrFormat)
}
