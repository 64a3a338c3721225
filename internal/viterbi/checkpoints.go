package viterbi

import (
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// checkpointStride bounds how many rows elapse between checkpoints: the
// row-reduced forward sweep only retains a full-row snapshot every
// checkpointStride rows, bounding snapshot memory to roughly
// qLength * nStates * (tLength/checkpointStride) instead of the full
// table's qLength * tLength * nStates (spec.md §4.3 "reduced space").
const checkpointStride = 64

// runCheckpoints computes a row-reduced, meet-in-the-middle bisection
// instead of materializing the full table (spec.md §4.3 step 2): a
// forward sweep (the same recurrence sweepForward uses, exact, with
// full-row snapshots retained only at stride boundaries) finds the
// accepted end and every boundary's reachable (q,state) prefix scores; a
// backward sweep (computeCellBackward) finds each boundary's
// suffix-to-go scores. Combining the two at each boundary selects the
// (q,state) the optimal path passes through there, so the result can be
// built without ever tracing back through a fully materialized table.
func runCheckpoints(task Task) (*Result, error) {
	m := task.Model
	region := task.Region
	shadowSlots := totalShadowSlots(m)
	spans := spansByState(m)
	sources, dests := shadowsByState(m)
	order := statesByRank(m)
	depth := maxDeltaT(m) + 1
	nStates := len(m.States())

	w := newRowWindow(region.QLength, nStates, depth, shadowSlots)
	if task.Continuation != nil {
		seed := w.at(0, 0, task.Continuation.FirstState)
		*seed = cell{score: 0, shadow: append([]int(nil), task.Continuation.FirstCell...), valid: true}
	}

	fwdSnaps := make(map[int][]cell)
	endState := m.State(m.End())
	bestScore := -1 << 62
	bestQ, bestT := region.QStart, region.TStart
	var bestCellShadow []int
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
		if ti > 0 && ti%checkpointStride == 0 {
			fwdSnaps[ti] = w.snapshot(ti)
		}
		if task.Continuation == nil {
			for qi := 0; qi <= region.QLength; qi++ {
				q := region.QStart + qi
				if !endAllowed(endState.Scope, q, t, region) {
					continue
				}
				c := w.at(qi, ti, m.End())
				if c.valid && c.score > bestScore {
					bestScore, bestQ, bestT, found = c.score, q, t, true
					bestCellShadow = append([]int(nil), c.shadow...)
				}
			}
		}
	}

	var finalState c4.StateID
	var finalCell []int
	if task.Continuation != nil {
		c := w.at(region.QLength, region.TLength, task.Continuation.FinalState)
		if !c.valid || c.score < task.Threshold {
			return &Result{Accepted: false}, nil
		}
		bestScore = c.score
		bestQ, bestT = region.QStart+region.QLength, region.TStart+region.TLength
		finalState = task.Continuation.FinalState
		finalCell = append([]int(nil), c.shadow...)
	} else {
		if !found || bestScore < task.Threshold {
			return &Result{Accepted: false}, nil
		}
		finalState = m.End()
		finalCell = bestCellShadow
	}

	firstState := m.Start()
	firstCell := make([]int, shadowSlots)
	if task.Continuation != nil {
		firstState = task.Continuation.FirstState
		firstCell = append([]int(nil), task.Continuation.FirstCell...)
	}

	tiEnd := bestT - region.TStart
	var boundaries []int
	for ti := checkpointStride; ti < tiEnd; ti += checkpointStride {
		boundaries = append(boundaries, ti)
	}

	if len(boundaries) == 0 {
		return &Result{
			Score: bestScore, Accepted: true,
			Checkpoints: []Checkpoint{{
				FirstState: firstState, FinalState: finalState,
				SubRegion: c4.Region{QStart: region.QStart, QLength: bestQ - region.QStart, TStart: region.TStart, TLength: bestT - region.TStart},
				FirstCell: firstCell, FinalCell: finalCell,
			}},
		}, nil
	}

	strideSet := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		strideSet[b] = true
	}
	backSnaps := sweepBackward(m, task.UserData, region, finalState, bestQ, bestT, strideSet)

	prevState, prevQ, prevT, prevCell := firstState, region.QStart, region.TStart, firstCell
	var checkpoints []Checkpoint
	for _, ti := range boundaries {
		fRow, bRow := fwdSnaps[ti], backSnaps[ti]
		if fRow == nil || bRow == nil {
			continue // boundary fell outside the accepted sub-region; fold into the next segment
		}
		bestCombined := subst.ImpossiblyLow
		selQ, selState := -1, c4.StateID(0)
		for qi := 0; qi <= region.QLength; qi++ {
			for s := 0; s < nStates; s++ {
				fc := fRow[qi*nStates+s]
				bc := bRow[qi*nStates+s]
				if !fc.valid || !bc.valid {
					continue
				}
				combined := clampAdd(fc.score, bc.score)
				if combined > bestCombined {
					bestCombined, selQ, selState = combined, qi, c4.StateID(s)
				}
			}
		}
		qAbs := region.QStart + selQ
		if selQ < 0 || qAbs < prevQ {
			continue // no valid (monotonic) split found at this boundary; fold into the next segment
		}
		cp := Checkpoint{
			FirstState: prevState, FinalState: selState,
			SubRegion: c4.Region{QStart: prevQ, QLength: qAbs - prevQ, TStart: prevT, TLength: region.TStart + ti - prevT},
			FirstCell: prevCell, FinalCell: append([]int(nil), fRow[selQ*nStates+int(selState)].shadow...),
		}
		checkpoints = append(checkpoints, cp)
		prevState, prevQ, prevT, prevCell = cp.FinalState, qAbs, region.TStart+ti, cp.FinalCell
	}
	checkpoints = append(checkpoints, Checkpoint{
		FirstState: prevState, FinalState: finalState,
		SubRegion: c4.Region{QStart: prevQ, QLength: bestQ - prevQ, TStart: prevT, TLength: bestT - prevT},
		FirstCell: prevCell, FinalCell: finalCell,
	})

	return &Result{Score: bestScore, Accepted: true, Checkpoints: checkpoints}, nil
}
