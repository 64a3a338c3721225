package viterbi

import (
	"fmt"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
)

// runFullTable computes the complete (t,q,state) grid -- quadratic space --
// and is used for FindPath only; internal/optimal runs FindPath on each
// checkpoint sub-region small enough to afford it.
func runFullTable(task Task, onRow func(ti int, tb *table)) (*Result, error) {
	m := task.Model
	region := task.Region
	shadowSlots := totalShadowSlots(m)
	tb := newTable(region.QLength, region.TLength, len(m.States()), shadowSlots)
	spans := spansByState(m)
	sources, dests := shadowsByState(m)
	order := statesByRank(m)

	if task.Continuation != nil {
		seedCell := tb.get(0, 0, task.Continuation.FirstState)
		*seedCell = cell{score: 0, shadow: append([]int(nil), task.Continuation.FirstCell...), valid: true}
	}

	for ti := 0; ti <= region.TLength; ti++ {
		t := region.TStart + ti
		for qi := 0; qi <= region.QLength; qi++ {
			q := region.QStart + qi
			for _, state := range order {
				if task.Continuation != nil && ti == 0 && qi == 0 && state == task.Continuation.FirstState {
					continue // already seeded above
				}
				c := computeCell(m, q, t, state, region,
					func(qRel, tRel int, s c4.StateID) *cell { return tb.get(qRel, tRel, s) },
					func(qRel int, s c4.StateID) *cell { return tb.get(qRel, ti, s) },
					spans, sources, dests, task.UserData)
				*tb.get(qi, ti, state) = c
			}
		}
		if onRow != nil {
			onRow(ti, tb)
		}
	}

	result, err := finish(task, tb)
	if err != nil {
		return nil, err
	}
	if task.Mode == FindPath && result.Accepted {
		al, err := traceback(task, tb, result)
		if err != nil {
			return nil, err
		}
		result.Alignment = al
	}
	return result, nil
}

// finish scans END's scope-allowed positions (or, in continuation mode,
// reads the pinned final cell directly) and selects the best terminal.
func finish(task Task, tb *table) (*Result, error) {
	m := task.Model
	region := task.Region

	if task.Continuation != nil {
		c := tb.get(region.QLength, region.TLength, task.Continuation.FinalState)
		if !c.valid || c.score < task.Threshold {
			return &Result{Accepted: false}, nil
		}
		return &Result{Score: c.score, Accepted: true, SubRegion: region}, nil
	}

	endState := m.State(m.End())
	bestScore := -1 << 62
	bestQ, bestT := region.QStart, region.TStart
	found := false
	for ti := 0; ti <= region.TLength; ti++ {
		t := region.TStart + ti
		for qi := 0; qi <= region.QLength; qi++ {
			q := region.QStart + qi
			if !endAllowed(endState.Scope, q, t, region) {
				continue
			}
			c := tb.get(qi, ti, m.End())
			if c.valid && c.score > bestScore {
				bestScore, bestQ, bestT, found = c.score, q, t, true
			}
		}
	}
	if !found || bestScore < task.Threshold {
		return &Result{Accepted: false}, nil
	}
	sub := c4.Region{QStart: region.QStart, QLength: bestQ - region.QStart, TStart: region.TStart, TLength: bestT - region.TStart}
	return &Result{Score: bestScore, Accepted: true, SubRegion: sub}, nil
}

// traceback walks backpointers from the accepted terminal cell to START,
// emitting a coalesced run-length operation sequence (spec.md §4.2).
func traceback(task Task, tb *table, result *Result) (*alignment.Alignment, error) {
	m := task.Model
	region := result.SubRegion
	if task.Continuation != nil {
		region = task.Region
	}

	endState := m.End()
	if task.Continuation != nil {
		endState = task.Continuation.FinalState
	}
	qi, ti := region.QLength, region.TLength

	type step struct {
		tid c4.TransitionID
	}
	var steps []step
	state := endState
	for {
		c := tb.get(qi, ti, state)
		if !c.hasBack {
			break
		}
		tr := m.Transition(c.back)
		steps = append(steps, step{tid: c.back})
		if !tr.IsSilent() {
			qi -= tr.DeltaQ
			ti -= tr.DeltaT
		}
		state = tr.Input
		if qi == 0 && ti == 0 && state == m.Start() {
			break
		}
	}
	if state != m.Start() && (task.Continuation == nil || state != task.Continuation.FirstState) {
		return nil, fmt.Errorf("%w: traceback did not reach START", ErrUsage)
	}

	al := alignment.New(m, c4.Region{QStart: task.Region.QStart, QLength: region.QLength, TStart: task.Region.TStart, TLength: region.TLength}, result.Score)
	for i := len(steps) - 1; i >= 0; i-- {
		al.Add(steps[i].tid, 1)
	}
	return al, nil
}
