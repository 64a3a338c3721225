package pcr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/seqview"
)

func seq(t *testing.T, id, symbols string) seqview.Sequence {
	t.Helper()
	s, err := seqview.NewSequence(id, "", []byte(symbols), seqview.NewAlphabet(seqview.DNA), seqview.Forward, nil)
	require.NoError(t, err)
	return s
}

// TestSimulateFindsProductBetweenForwardAndRevcompPrimers mirrors spec.md
// §8 scenario D: a forward primer anneals upstream and the reverse primer
// (whose revcomp matches the template directly) anneals downstream,
// yielding one product within the configured length bounds.
func TestSimulateFindsProductBetweenForwardAndRevcompPrimers(t *testing.T) {
	fwd, err := NewPrimer("fwd", []byte("ACGTACGTAC"), 0)
	require.NoError(t, err)
	rev, err := NewPrimer("rev", []byte("CTTTACGGGT"), 0) // its revcomp anneals downstream

	require.NoError(t, err)

	target := "ACGTACGTAC" + "TTTTTTTTTTTTTTTTTTTT" + reverseComplementString("CTTTACGGGT")

	e := NewEngine(0)
	_, err = e.AddExperiment("exp1", fwd, rev, 40, 60)
	require.NoError(t, err)
	require.NoError(t, e.Prepare())

	var hits []int
	err = e.Simulate(seq(t, "target", target), func(exp *Experiment, a, b Match, productLen int) bool {
		hits = append(hits, productLen)
		return false
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, len(target), hits[0])
}

func reverseComplementString(s string) string {
	return string(reverseComplement([]byte(s)))
}

func TestAddExperimentAfterPrepareIsUsageError(t *testing.T) {
	fwd, _ := NewPrimer("fwd", []byte("ACGTACGTAC"), 0)
	rev, _ := NewPrimer("rev", []byte("CTTTACGGGT"), 0)
	e := NewEngine(0)
	require.NoError(t, e.Prepare())
	_, err := e.AddExperiment("exp1", fwd, rev, 10, 100)
	require.ErrorIs(t, err, ErrUsage)
}

func TestSimulateBeforePrepareIsUsageError(t *testing.T) {
	e := NewEngine(0)
	err := e.Simulate(seq(t, "t", "ACGT"), func(*Experiment, Match, Match, int) bool { return false })
	require.ErrorIs(t, err, ErrUsage)
}

// TestSimulateExtendsPastSeedAndCountsMismatches exercises a primer whose
// probe seed (probe_length < length) matches exactly but whose extension
// region carries one mismatch, accepted only once the threshold allows it.
func TestSimulateExtendsPastSeedAndCountsMismatches(t *testing.T) {
	fwd, err := NewPrimer("fwd", []byte("ACGTACGTAC"), 6) // seed = "ACGTAC", extension = "GTAC"
	require.NoError(t, err)
	rev, err := NewPrimer("rev", []byte("CTTTACGGGT"), 0)
	require.NoError(t, err)

	targetMismatched := "ACGTACGTAG" + "TTTTTTTTTTTTTTTTTTTT" + reverseComplementString("CTTTACGGGT")

	strict := NewEngine(0)
	_, err = strict.AddExperiment("exp1", fwd, rev, 30, 60)
	require.NoError(t, err)
	require.NoError(t, strict.Prepare())
	var strictHits int
	require.NoError(t, strict.Simulate(seq(t, "t", targetMismatched), func(exp *Experiment, a, b Match, productLen int) bool {
		strictHits++
		return false
	}))
	require.Equal(t, 0, strictHits)

	tolerant := NewEngine(1)
	_, err = tolerant.AddExperiment("exp1", fwd, rev, 30, 60)
	require.NoError(t, err)
	require.NoError(t, tolerant.Prepare())
	var tolerantHits int
	require.NoError(t, tolerant.Simulate(seq(t, "t", targetMismatched), func(exp *Experiment, a, b Match, productLen int) bool {
		tolerantHits++
		return false
	}))
	require.Equal(t, 1, tolerantHits)
}

func TestSimulateRejectsMismatchesBeyondThreshold(t *testing.T) {
	fwd, _ := NewPrimer("fwd", []byte("ACGTACGTAC"), 0)
	rev, _ := NewPrimer("rev", []byte("CTTTACGGGT"), 0)

	target := "ACGTACGTAG" + "TTTTTTTTTTTTTTTTTTTT" + reverseComplementString("CTTTACGGGT") // last fwd base mismatched

	e := NewEngine(0) // zero mismatch tolerance
	_, err := e.AddExperiment("exp1", fwd, rev, 30, 60)
	require.NoError(t, err)
	require.NoError(t, e.Prepare())

	var hits int
	err = e.Simulate(seq(t, "target", target), func(exp *Experiment, a, b Match, productLen int) bool {
		hits++
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 0, hits)
}
