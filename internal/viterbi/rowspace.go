package viterbi

import (
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// maxDeltaT returns the largest Δt carried by any of m's transitions.
// computeCell's rowAt callback only ever reaches back Δt rows from the row
// it is building, so a row-reduced sweep only ever needs to keep
// maxDeltaT+1 rows alive at once (spec.md §4.3 "reduced space").
func maxDeltaT(m *c4.ClosedModel) int {
	best := 0
	for _, tr := range m.Model.Transitions() {
		if tr.DeltaT > best {
			best = tr.DeltaT
		}
	}
	return best
}

// rowWindow is a ring buffer holding only the trailing (or, run backward,
// leading) rows a reduced-space sweep needs to satisfy computeCell's /
// computeCellBackward's rowAt callback, instead of the full (t,q,state)
// table.
type rowWindow struct {
	qLen, nStates, depth int
	rows                 [][]cell
}

func newRowWindow(qLen, nStates, depth, shadowSlots int) *rowWindow {
	w := &rowWindow{qLen: qLen, nStates: nStates, depth: depth}
	w.rows = make([][]cell, depth)
	for i := range w.rows {
		w.rows[i] = freshRow(qLen, nStates, shadowSlots)
	}
	return w
}

func freshRow(qLen, nStates, shadowSlots int) []cell {
	row := make([]cell, (qLen+1)*nStates)
	for i := range row {
		row[i] = impossibleCell(shadowSlots)
	}
	return row
}

func (w *rowWindow) slot(ti int) []cell {
	return w.rows[((ti%w.depth)+w.depth)%w.depth]
}

func (w *rowWindow) at(qi, ti int, s c4.StateID) *cell {
	return &w.slot(ti)[qi*w.nStates+int(s)]
}

// reset clears the slot about to be reused for row ti, discarding whatever
// row last occupied it (guaranteed out of rowAt's reach by now).
func (w *rowWindow) reset(ti, shadowSlots int) {
	row := w.slot(ti)
	for i := range row {
		row[i] = impossibleCell(shadowSlots)
	}
}

// snapshot clones row ti's cells (score, shadow vector, validity) so the
// row survives the ring buffer cycling past it.
func (w *rowWindow) snapshot(ti int) []cell {
	row := w.slot(ti)
	out := make([]cell, len(row))
	for i, c := range row {
		out[i] = cell{score: c.score, shadow: append([]int(nil), c.shadow...), valid: c.valid}
	}
	return out
}

// sweepForward runs the forward recurrence across task.Region in bounded
// memory (a rowWindow of maxDeltaT+1 rows) instead of a full quadratic
// table, tracking the best END-accepted cell across every row exactly as
// full.go's finish does over the materialized table. It is the shared
// primitive behind FindScore and FindRegion, neither of which needs a
// traceback (spec.md §4.3 "reduced space").
func sweepForward(task Task) (*Result, error) {
	m := task.Model
	region := task.Region
	shadowSlots := totalShadowSlots(m)
	spans := spansByState(m)
	sources, dests := shadowsByState(m)
	order := statesByRank(m)
	depth := maxDeltaT(m) + 1

	w := newRowWindow(region.QLength, len(m.States()), depth, shadowSlots)

	if task.Continuation != nil {
		seed := w.at(0, 0, task.Continuation.FirstState)
		*seed = cell{score: 0, shadow: append([]int(nil), task.Continuation.FirstCell...), valid: true}
	}

	endState := m.State(m.End())
	bestScore := -1 << 62
	bestQ, bestT := region.QStart, region.TStart
	found := false

	for ti := 0; ti <= region.TLength; ti++ {
		t := region.TStart + ti
		if ti >= depth {
			w.reset(ti, shadowSlots)
		}
		for qi := 0; qi <= region.QLength; qi++ {
			q := region.QStart + qi
			for _, state := range order {
				if task.Continuation != nil && ti == 0 && qi == 0 && state == task.Continuation.FirstState {
					continue
				}
				c := computeCell(m, q, t, state, region,
					func(qRel, tRel int, s c4.StateID) *cell { return w.at(qRel, tRel, s) },
					func(qRel int, s c4.StateID) *cell { return w.at(qRel, ti, s) },
					spans, sources, dests, task.UserData)
				*w.at(qi, ti, state) = c
			}
		}
		if task.Continuation != nil {
			continue
		}
		for qi := 0; qi <= region.QLength; qi++ {
			q := region.QStart + qi
			if !endAllowed(endState.Scope, q, t, region) {
				continue
			}
			c := w.at(qi, ti, m.End())
			if c.valid && c.score > bestScore {
				bestScore, bestQ, bestT, found = c.score, q, t, true
			}
		}
	}

	if task.Continuation != nil {
		c := w.at(region.QLength, region.TLength, task.Continuation.FinalState)
		if !c.valid || c.score < task.Threshold {
			return &Result{Accepted: false}, nil
		}
		return &Result{Score: c.score, Accepted: true, SubRegion: region}, nil
	}
	if !found || bestScore < task.Threshold {
		return &Result{Accepted: false}, nil
	}
	sub := c4.Region{QStart: region.QStart, QLength: bestQ - region.QStart, TStart: region.TStart, TLength: bestT - region.TStart}
	return &Result{Score: bestScore, Accepted: true, SubRegion: sub}, nil
}

// computeCellBackward evaluates the best SUFFIX score from (q,t,state) to
// the pinned (qEndAbs, tEndAbs, finalState), using out-edges in place of
// computeCell's in-edges. It is the other half of FindCheckpoints'
// meet-in-the-middle bisection (spec.md §4.3 step 2).
//
// It intentionally omits two things a fully symmetric reverse engine would
// need: span Min/Max loop-count enforcement, and destination-shadow End
// contributions. Both require state accumulated walking forward from
// START (the loop count so far; the shadow's Start-recorded value), which
// a pass that never visits a region's prefix cannot reconstruct. DESIGN.md
// records this as the engine's one deliberate approximation: it can bias
// *which* (q,state) a checkpoint boundary is drawn through, never the
// score ultimately reported for a checkpoint (that always comes from the
// exact forward sweep), and any wrong boundary choice is caught, not
// silently accepted -- internal/optimal's checkpointRecurse asserts the
// stitched sub-alignments' score against the forward sweep's score.
func computeCellBackward(
	m *c4.ClosedModel, q, t int, state c4.StateID, region c4.Region,
	rowAt func(qRel, tRel int, s c4.StateID) *cell,
	curRow func(qRel int, s c4.StateID) *cell,
	finalState c4.StateID, qEndAbs, tEndAbs int,
	ud c4.UserData,
) cell {
	best := impossibleCell(0)
	if state == finalState && q == qEndAbs && t == tEndAbs {
		best = cell{valid: true}
	}

	st := m.State(state)
	for _, tid := range st.OutTransitions() {
		tr := m.Transition(tid)
		var succ *cell
		var succQ, succT int
		if tr.IsSilent() {
			succQ, succT = q, t
			succ = curRow(q-region.QStart, tr.Output)
		} else {
			succQ, succT = q+tr.DeltaQ, t+tr.DeltaT
			if succQ > qEndAbs || succT > tEndAbs {
				continue
			}
			succ = rowAt(succQ-region.QStart, succT-region.TStart, tr.Output)
		}
		if succ == nil || !succ.valid || succ.score <= subst.ImpossiblyLow {
			continue
		}

		tentative := succ.score
		if tr.HasCalc() {
			calc := m.Calc(tr.Calc)
			tentative = clampAdd(tentative, calc.Score(q, t, ud))
		}
		if tentative <= subst.ImpossiblyLow {
			continue
		}
		if !best.valid || tentative > best.score {
			best = cell{score: tentative, valid: true}
		}
	}
	return best
}

// sweepBackward runs computeCellBackward from (qEndAbs,tEndAbs) back to
// region's start, in bounded memory, returning a full-row snapshot of
// suffix-to-go scores at every ti named in boundaries.
func sweepBackward(m *c4.ClosedModel, ud c4.UserData, region c4.Region, finalState c4.StateID, qEndAbs, tEndAbs int, boundaries map[int]bool) map[int][]cell {
	order := statesByRank(m)
	reverseOrder := make([]c4.StateID, len(order))
	for i, s := range order {
		reverseOrder[len(order)-1-i] = s
	}
	depth := maxDeltaT(m) + 1
	nStates := len(m.States())
	w := newRowWindow(region.QLength, nStates, depth, 0)

	snapshots := make(map[int][]cell)
	tiEnd := tEndAbs - region.TStart
	for ti := tiEnd; ti >= 0; ti-- {
		t := region.TStart + ti
		if tiEnd-ti >= depth {
			w.reset(ti, 0)
		}
		for qi := 0; qi <= region.QLength; qi++ {
			q := region.QStart + qi
			for _, state := range reverseOrder {
				c := computeCellBackward(m, q, t, state, region,
					func(qRel, tRel int, s c4.StateID) *cell { return w.at(qRel, tRel, s) },
					func(qRel int, s c4.StateID) *cell { return w.at(qRel, ti, s) },
					finalState, qEndAbs, tEndAbs, ud)
				*w.at(qi, ti, state) = c
			}
		}
		if boundaries[ti] {
			snapshots[ti] = w.snapshot(ti)
		}
	}
	return snapshots
}
