// Package viterbi implements the DP engine of spec.md §4.3: it evaluates a
// closed c4.Model over a rectangular region in one of four modes, honoring
// scopes, shadows, spans, and the deterministic smallest-transition-id
// tie-break, producing a score and (depending on mode) traceback
// information or sub-region/checkpoint summaries.
package viterbi

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// Mode selects what a Task computes (spec.md §4.3).
type Mode int

const (
	FindScore Mode = iota
	FindPath
	FindRegion
	FindCheckpoints
)

// Errors surfaced by task construction and execution (spec.md §7).
var (
	ErrUsage         = errors.New("viterbi: usage error")
	ErrNoAlignment   = errors.New("viterbi: score below threshold, no alignment")
)

// Continuation constrains a Task the way spec.md §4.3 describes: the DP's
// start cell is seeded from FirstCell projected into FirstState, and only
// a cell reaching (FinalState, matching FinalCell) is accepted as the
// terminal -- the glue for the reduced-space divide-and-conquer algorithm.
type Continuation struct {
	FirstState c4.StateID
	FirstCell  []int // length total_shadow_designations: the seed cell's shadow vector, projected into FirstState with score 0
	FinalState c4.StateID
	FinalCell  []int // length total_shadow_designations: the terminal cell's shadow vector, for seeding the next continuation
}

// Task is one Viterbi invocation.
type Task struct {
	Model        *c4.ClosedModel
	Region       c4.Region
	Mode         Mode
	UserData     c4.UserData
	Continuation *Continuation
	// Threshold gates every mode: a result scoring below
	// Threshold is reported as "no alignment" rather than returned
	// (spec.md §7 "Score below threshold. Not an error").
	Threshold int
}

// Checkpoint is one row-pinned sub-alignment endpoint produced by
// FindCheckpoints (spec.md §4.3 step 2).
type Checkpoint struct {
	FirstState, FinalState c4.StateID
	SubRegion              c4.Region
	FirstCell, FinalCell   []int
}

// Result is a Task's output; which fields are populated depends on Mode.
type Result struct {
	Score       int
	Accepted    bool // false means "score below threshold, no alignment"
	Alignment   *alignment.Alignment // FindPath only
	SubRegion   c4.Region            // FindRegion only
	Checkpoints []Checkpoint         // FindCheckpoints only
}

// table holds the full (t,q,state) cell grid, used by FindPath, the one
// mode that needs a traceback. FindScore, FindRegion and FindCheckpoints
// use the smaller rolling-row window in rowspace.go instead.
type table struct {
	qLen, tLen, nStates int
	cells               []cell // flattened [t][q][state]
}

func newTable(qLen, tLen, nStates, shadowSlots int) *table {
	tb := &table{qLen: qLen, tLen: tLen, nStates: nStates}
	tb.cells = make([]cell, (qLen+1)*(tLen+1)*nStates)
	for i := range tb.cells {
		tb.cells[i] = impossibleCell(shadowSlots)
	}
	return tb
}

func (tb *table) idx(qi, ti int, state c4.StateID) int {
	return (ti*(tb.qLen+1)+qi)*tb.nStates + int(state)
}

func (tb *table) get(qi, ti int, state c4.StateID) *cell {
	return &tb.cells[tb.idx(qi, ti, state)]
}

// Run executes task and returns its Result.
func Run(task Task) (*Result, error) {
	if task.Model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrUsage)
	}
	switch task.Mode {
	case FindScore:
		return runScoreOnly(task)
	case FindRegion:
		return runRegion(task)
	case FindPath:
		return runFullTable(task, nil)
	case FindCheckpoints:
		return runCheckpoints(task)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrUsage, task.Mode)
	}
}

// spansByState indexes a model's spans by the state they bound (spec.md
// assumes at most one span per self-cycle state, matching every
// sub-model §4.4/ner builds).
func spansByState(m *c4.ClosedModel) map[c4.StateID]*c4.Span {
	out := make(map[c4.StateID]*c4.Span)
	for _, sp := range m.Spans() {
		out[sp.State] = sp
	}
	return out
}

func shadowsByState(m *c4.ClosedModel) (sources map[c4.StateID][]*c4.Shadow, dests map[c4.TransitionID][]*c4.Shadow) {
	sources = make(map[c4.StateID][]*c4.Shadow)
	dests = make(map[c4.TransitionID][]*c4.Shadow)
	for _, sh := range m.Model.Shadows() {
		for _, s := range sh.Sources {
			sources[s] = append(sources[s], sh)
		}
		for _, d := range sh.Destinations {
			dests[d] = append(dests[d], sh)
		}
	}
	return
}

// statesByRank returns state ids ordered by silent-transition topological
// rank, so a DP sweep resolves every silent chain within one (q,t) cell in
// a single pass (spec.md §4.2 "sweep order").
func statesByRank(m *c4.ClosedModel) []c4.StateID {
	states := m.States()
	order := make([]c4.StateID, len(states))
	for i, s := range states {
		order[i] = s.ID
	}
	sort.Slice(order, func(i, j int) bool { return m.SilentRank(order[i]) < m.SilentRank(order[j]) })
	return order
}

// computeCell evaluates the best incoming transition for (qi,ti,state)
// within tb (or the row-reduced equivalent via the rowAt callback), applying
// shadows, spans, and the smallest-transition-id tie-break (spec.md §4.3).
func computeCell(
	m *c4.ClosedModel, q, t int, state c4.StateID, region c4.Region,
	rowAt func(qRel, tRel int, s c4.StateID) *cell,
	curRow func(qRel int, s c4.StateID) *cell,
	spans map[c4.StateID]*c4.Span,
	sourceShadows map[c4.StateID][]*c4.Shadow,
	destShadows map[c4.TransitionID][]*c4.Shadow,
	ud c4.UserData,
) cell {
	best := impossibleCell(totalShadowSlots(m))

	st := m.State(state)
	if state == m.Start() && startAllowed(st.Scope, q, t, region) {
		seed := 0
		if st.CellStart != nil {
			seed = st.CellStart(q, t, ud)
		}
		best = cell{score: seed, shadow: make([]int, totalShadowSlots(m)), valid: true}
	}

	for _, tid := range st.InTransitions() {
		tr := m.Transition(tid)
		var pred *cell
		var predQ, predT int
		if tr.IsSilent() {
			predQ, predT = q, t
			pred = curRow(q-region.QStart, tr.Input)
		} else {
			predQ, predT = q-tr.DeltaQ, t-tr.DeltaT
			if predQ < region.QStart || predT < region.TStart {
				continue
			}
			pred = rowAt(predQ-region.QStart, predT-region.TStart, tr.Input)
		}
		if pred == nil || !pred.valid || pred.score <= subst.ImpossiblyLow {
			continue
		}

		newLoopCount := 0
		if sp, ok := spans[state]; ok && tr.Input == state && tr.Output == state {
			newLoopCount = pred.loopCount + 1
			if sp.MaxQ >= 0 && tr.DeltaQ > 0 && newLoopCount > sp.MaxQ {
				continue
			}
			if sp.MaxT >= 0 && tr.DeltaT > 0 && newLoopCount > sp.MaxT {
				continue
			}
		} else if sp, ok := spans[tr.Input]; ok && tr.Input != state {
			// Exiting a span-bound state: enforce the minimum re-entry count.
			if (sp.MinQ >= 0 && pred.loopCount < sp.MinQ) || (sp.MinT >= 0 && pred.loopCount < sp.MinT) {
				continue
			}
		}

		tentative := pred.score
		if tr.HasCalc() {
			calc := m.Calc(tr.Calc)
			tentative = clampAdd(tentative, calc.Score(predQ, predT, ud))
		}
		for _, sh := range destShadows[tid] {
			tentative = clampAdd(tentative, sh.End(pred.shadow[sh.Designation], q, t, ud))
		}
		if tentative <= subst.ImpossiblyLow {
			continue
		}

		if !best.valid || tentative > best.score || (tentative == best.score && (!best.hasBack || tid < best.back)) {
			nb := cell{score: tentative, shadow: append([]int(nil), pred.shadow...), back: tid, hasBack: true, valid: true, loopCount: newLoopCount}
			for _, sh := range sourceShadows[tr.Input] {
				nb.shadow[sh.Designation] = sh.Start(predQ, predT, ud)
			}
			best = nb
		}
	}
	return best
}

func totalShadowSlots(m *c4.ClosedModel) int { return m.TotalShadowDesignations() }
