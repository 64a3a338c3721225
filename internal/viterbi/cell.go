package viterbi

import (
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// cell is one (q,t,state) DP entry: a fixed-size vector of scores of
// length 1+total_shadow_designations (spec.md §3 "Viterbi cell"), plus the
// bookkeeping the engine needs to reconstruct a path and enforce spans.
type cell struct {
	score     int
	shadow    []int
	loopCount int // consecutive self-loop visits, meaningful only for span-bound states
	back      c4.TransitionID
	hasBack   bool
	valid     bool
}

func impossibleCell(shadowSlots int) cell {
	return cell{score: subst.ImpossiblyLow, shadow: make([]int, shadowSlots)}
}

func clampAdd(a, b int) int {
	if a <= subst.ImpossiblyLow || b <= subst.ImpossiblyLow {
		return subst.ImpossiblyLow
	}
	sum := a + b
	if sum < subst.ImpossiblyLow {
		return subst.ImpossiblyLow
	}
	return sum
}
