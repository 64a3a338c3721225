package hsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// matchScorer returns a ScoreFunc over two strings that scores +5 for a
// match and -4 for a mismatch, mirroring internal/subst's default DNA
// match/mismatch scoring.
func matchScorer(query, target string) ScoreFunc {
	return func(q, t int) int {
		if q < 0 || t < 0 || q >= len(query) || t >= len(target) {
			return -100
		}
		if query[q] == target[t] {
			return 5
		}
		return -4
	}
}

func TestSeedHSPExtendsBothDirections(t *testing.T) {
	query := "AAAACGTAAAA"
	target := "GGGGCGTGGGG"
	score := matchScorer(query, target)

	h, ok := SeedHSP(5, 5, score, Params{Threshold: 0, DropOff: 10}, nil)
	require.True(t, ok)
	require.Equal(t, 4, h.QStart)
	require.Equal(t, 4, h.TStart)
	require.Equal(t, 3, h.Length)
	require.Equal(t, 15, h.Score)
}

func TestSeedHSPRejectsBelowThreshold(t *testing.T) {
	query := "AAAAA"
	target := "TTTTT"
	score := matchScorer(query, target)

	_, ok := SeedHSP(2, 2, score, Params{Threshold: 1, DropOff: 0}, nil)
	require.False(t, ok)
}

func TestSeedHSPHonorsHorizon(t *testing.T) {
	query := "AAAACGTAAAA"
	target := "GGGGCGTGGGG"
	score := matchScorer(query, target)

	horizon := NewHorizon()
	first, ok := SeedHSP(5, 5, score, Params{Threshold: 0, DropOff: 10}, horizon)
	require.True(t, ok)
	require.True(t, horizon.Covers(first.QStart, first.TStart))

	_, ok = SeedHSP(5, 5, score, Params{Threshold: 0, DropOff: 10}, horizon)
	require.False(t, ok, "a seed already covered by the horizon must not be re-extended")
}

func TestSeedAllDeduplicatesOverlappingDiagonalSeeds(t *testing.T) {
	query := "AAAACGTAAAA"
	target := "GGGGCGTGGGG"
	score := matchScorer(query, target)

	seeds := []Seed{{Q: 4, T: 4}, {Q: 5, T: 5}, {Q: 6, T: 6}}
	out := SeedAll(seeds, score, Params{Threshold: 0, DropOff: 10}, 0)
	require.Len(t, out, 1, "three seeds on the same diagonal within one HSP's span collapse to a single result")
	require.Equal(t, 15, out[0].Score)
}

func TestSeedAllRequiresSeedRepeatOnDiagonal(t *testing.T) {
	query := "AAAACGTAAAA"
	target := "GGGGCGTGGGG"
	score := matchScorer(query, target)

	seeds := []Seed{{Q: 5, T: 5}}
	out := SeedAll(seeds, score, Params{Threshold: 0, DropOff: 10, SeedRepeat: 2}, 0)
	require.Empty(t, out, "a lone seed on its diagonal must not spawn an HSP when SeedRepeat requires 2")
}

func TestSeedHSPRespectsMask(t *testing.T) {
	query := "AAAACGTAAAA"
	target := "GGGGCGTGGGG"
	score := matchScorer(query, target)

	masked := Params{Threshold: 0, DropOff: 10, Mask: func(q, t int) bool { return q == 5 && t == 5 }}
	_, ok := SeedHSP(5, 5, score, masked, nil)
	require.False(t, ok)
}
