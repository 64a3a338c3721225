// Package alignment implements the Alignment representation of spec.md §3
// and §4.2: a run-length encoded operation sequence over a c4.Model's
// transitions, with coalescing append, replay-based validation, and
// derivation import.
package alignment

import (
	"errors"
	"fmt"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// Errors surfaced by alignment construction and validation (spec.md §7).
var (
	ErrUsage          = errors.New("alignment: usage error")
	ErrInvalidPath    = errors.New("alignment: invalid path")
	ErrScoreMismatch  = errors.New("alignment: replayed score does not match recorded score")
)

// Op is one run-length encoded entry: transition Transition repeated
// Length times.
type Op struct {
	Transition c4.TransitionID
	Length     int
}

// Region is reexported from c4 for convenience; an Alignment's region is a
// rectangular sub-area of the DP task it was computed over.
type Region = c4.Region

// Alignment is `{model, region, score, operation sequence}` (spec.md §3).
type Alignment struct {
	Model  *c4.ClosedModel
	Region Region
	Score  int
	Ops    []Op
}

// New returns an empty Alignment over model within region.
func New(model *c4.ClosedModel, region Region, score int) *Alignment {
	return &Alignment{Model: model, Region: region, Score: score}
}

// Add appends deltaLength repetitions of transition, coalescing with the
// previous run if it names the same transition, and dropping the run
// entirely if the coalesced length reaches zero (spec.md §4.2: "add(...)
// with coalescing and deletion of zero-length runs"; deltaLength may be
// negative, "used during reduced-space splicing" to retract an
// overlapping run at a stitch boundary).
func (a *Alignment) Add(transition c4.TransitionID, deltaLength int) {
	if len(a.Ops) > 0 {
		last := &a.Ops[len(a.Ops)-1]
		if last.Transition == transition {
			last.Length += deltaLength
			if last.Length <= 0 {
				a.Ops = a.Ops[:len(a.Ops)-1]
			}
			return
		}
	}
	if deltaLength > 0 {
		a.Ops = append(a.Ops, Op{Transition: transition, Length: deltaLength})
	}
}

// TotalAdvance returns the total Δq and Δt spanned by every operation.
func (a *Alignment) TotalAdvance() (q, t int) {
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		q += tr.DeltaQ * op.Length
		t += tr.DeltaT * op.Length
	}
	return q, t
}

// ImportDerived copies src's operations into a new Alignment against the
// original (non-derived) model, rewriting each transition id through
// derivation (spec.md §4.2 "import_derived(source_alignment,
// derivation_map) copies operations rewriting transition ids through the
// map"). derivation must map every transition id appearing in src.
func ImportDerived(src *Alignment, original *c4.ClosedModel, derivation c4.DerivationMap) (*Alignment, error) {
	out := New(original, src.Region, src.Score)
	for _, op := range src.Ops {
		orig, ok := derivation[op.Transition]
		if !ok {
			return nil, fmt.Errorf("%w: no derivation entry for transition %d", ErrUsage, op.Transition)
		}
		out.Add(orig, op.Length)
	}
	return out, nil
}

// Replay walks every operation, driving shadows and the calc score exactly
// as spec.md §4.2 describes, and returns the recomputed score together
// with the final (q,t) and state reached.
func (a *Alignment) Replay(ud c4.UserData) (score, finalQ, finalT int, finalState c4.StateID, err error) {
	model := a.Model
	startState := model.State(model.Start())
	q, t := a.Region.QStart, a.Region.TStart
	if startState.CellStart != nil {
		score = startState.CellStart(q, t, ud)
	}

	// shadowStore[shadow id] = last recorded start() value.
	shadowStore := make(map[c4.ShadowID]int)
	curState := model.Start()

	sourceShadows := make(map[c4.StateID][]*c4.Shadow)
	destShadows := make(map[c4.TransitionID][]*c4.Shadow)
	for _, sh := range model.Model.Shadows() {
		for _, s := range sh.Sources {
			sourceShadows[s] = append(sourceShadows[s], sh)
		}
		for _, d := range sh.Destinations {
			destShadows[d] = append(destShadows[d], sh)
		}
	}

	for _, op := range a.Ops {
		tr := model.Transition(op.Transition)
		if tr.Input != curState {
			return 0, 0, 0, 0, fmt.Errorf("%w: operation %q input state does not chain from previous output", ErrInvalidPath, tr.Name)
		}
		for i := 0; i < op.Length; i++ {
			for _, sh := range sourceShadows[tr.Input] {
				shadowStore[sh.ID] = sh.Start(q, t, ud)
			}
			nq, nt := q+tr.DeltaQ, t+tr.DeltaT
			for _, sh := range destShadows[tr.ID] {
				adj := sh.End(shadowStore[sh.ID], nq, nt, ud)
				score = clampAdd(score, adj)
			}
			if tr.HasCalc() {
				calc := model.Calc(tr.Calc)
				score = clampAdd(score, calc.Score(q, t, ud))
			}
			q, t = nq, nt
		}
		curState = tr.Output
	}
	return score, q, t, curState, nil
}

// clampAdd adds b to a, clamping at subst.ImpossiblyLow so a shadow-end
// disqualification or an underflow-protected calc cannot wrap around
// (spec.md §4.3 "overflow/underflow protection").
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

// IsValid replays the alignment and checks region coverage, state
// chaining, and score equality (spec.md §4.2 is_valid).
func (a *Alignment) IsValid(ud c4.UserData) (bool, error) {
	score, q, t, state, err := a.Replay(ud)
	if err != nil {
		return false, err
	}
	if state != a.Model.End() {
		return false, fmt.Errorf("%w: alignment does not end at the model's END state", ErrInvalidPath)
	}
	wantQ := a.Region.QStart + a.Region.QLength
	wantT := a.Region.TStart + a.Region.TLength
	if q != wantQ || t != wantT {
		return false, fmt.Errorf("%w: alignment advances to (%d,%d), want (%d,%d)", ErrInvalidPath, q, t, wantQ, wantT)
	}
	if score != a.Score {
		return false, fmt.Errorf("%w: replayed %d, recorded %d", ErrScoreMismatch, score, a.Score)
	}
	if err := checkSplitCodonPairing(a); err != nil {
		return false, err
	}
	return true, nil
}

// checkSplitCodonPairing walks a's operations in order and verifies every
// LabelSplitCodon transition (internal/c4/phase's 1:2/2:1 paths) opens and
// closes in properly nested pairs (spec.md §4.4): a SplitCodonPost must
// match the most recently opened SplitCodonPre sharing its Pair name, and
// no pair may remain open once the alignment ends.
func checkSplitCodonPairing(a *Alignment) error {
	var stack []string
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		if tr.Label != c4.LabelSplitCodon {
			continue
		}
		marker, ok := tr.LabelData.(c4.SplitCodonMarker)
		if !ok {
			return fmt.Errorf("%w: split-codon transition %q carries no c4.SplitCodonMarker", ErrInvalidPath, tr.Name)
		}
		for i := 0; i < op.Length; i++ {
			switch marker.Role {
			case c4.SplitCodonPre:
				stack = append(stack, marker.Pair)
			case c4.SplitCodonPost:
				if len(stack) == 0 || stack[len(stack)-1] != marker.Pair {
					return fmt.Errorf("%w: split-codon transition %q closes pair %q without a matching open", ErrInvalidPath, tr.Name, marker.Pair)
				}
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: alignment ends with %d unclosed split-codon pair(s)", ErrInvalidPath, len(stack))
	}
	return nil
}
