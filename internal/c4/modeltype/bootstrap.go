// bootstrap.go supplements original_source/src/model/bootstrapper.c: a
// shared match/gap skeleton that every coding and nucleotide model type
// starts from, with two silent placeholder self-loops (labelled LabelIntron
// and LabelNER so c4's duplicate-outgoing-edge check distinguishes them)
// that a builder can (*c4.Model).Insert a splice-aware intron sub-model or
// a bare NER sub-model into, without re-deriving the affine skeleton each
// time (spec.md §4.4).
package modeltype

import "github.com/nfweeks/c4align/internal/c4"

// skeleton is the open affine-gapped match model plus the handles a
// builder needs to insert sub-models or add further transitions.
type skeleton struct {
	Model *c4.Model
	Match c4.StateID

	// IntronPlaceholder/NERPlaceholder are silent self-loop transitions on
	// Match, each usable exactly once as an Insert anchor. -1 when the
	// skeleton was built without that placeholder (closing the model
	// would otherwise leave an unused zero-advance self-loop, which the
	// silent-subgraph topological sort rejects as a cycle).
	IntronPlaceholder c4.TransitionID
	NERPlaceholder    c4.TransitionID
}

// matchParams configures the core match/mismatch step's advances (Δq,Δt)
// -- (1,1) for base-level alignment, (3,3) for codon-level.
type matchParams struct {
	DeltaQ, DeltaT int
	Score          c4.ScoreFunc
	MaxScore       int
}

// gapParams configures one axis's affine gap.
type gapParams struct {
	DeltaQ, DeltaT         int
	OpenPenalty, ExtendPenalty int
}

// buildAffineSkeleton assembles START -> Match -> END with a match
// self-loop plus two independent affine-gapped insertion states (one per
// axis), and the intron/NER placeholder self-loops on Match.
func buildAffineSkeleton(name string, startScope, endScope c4.Scope, match matchParams, queryGap, targetGap *gapParams, wantIntron, wantNER bool) *skeleton {
	m := c4.New(name)
	m.ConfigureStart(startScope, func(q, t int, ud c4.UserData) int { return 0 }, nil)
	m.ConfigureEnd(endScope, nil)

	mid := m.AddState("match")
	mustAdd(m, "start->match", m.Start(), mid, 0, 0, -1, c4.LabelNone, nil)
	mustAdd(m, "match->end", mid, m.End(), 0, 0, -1, c4.LabelNone, nil)

	matchCalc := m.AddCalc(name+".match", match.MaxScore, match.Score, nil, nil, c4.ProtectNone)
	mustAdd(m, "match.step", mid, mid, match.DeltaQ, match.DeltaT, matchCalc, c4.LabelMatch, nil)

	if queryGap != nil {
		addGapAxis(m, name+".q-gap", mid, *queryGap)
	}
	if targetGap != nil {
		addGapAxis(m, name+".t-gap", mid, *targetGap)
	}

	sk := &skeleton{Model: m, Match: mid, IntronPlaceholder: -1, NERPlaceholder: -1}
	if wantIntron {
		sk.IntronPlaceholder = mustAdd(m, "intron-site", mid, mid, 0, 0, -1, c4.LabelIntron, nil)
	}
	if wantNER {
		sk.NERPlaceholder = mustAdd(m, "ner-site", mid, mid, 0, 0, -1, c4.LabelNER, nil)
	}
	return sk
}

// addGapAxis adds an affine-gap insertion state reachable from and
// returning to mid: open (mid->gap), extend (gap self-loop), close
// (gap->mid), each tagged LabelGap.
func addGapAxis(m *c4.Model, name string, mid c4.StateID, p gapParams) {
	openCalc := m.AddCalc(name+".open", 0, func(q, t int, ud c4.UserData) int { return p.OpenPenalty + p.ExtendPenalty }, nil, nil, c4.ProtectUnderflow)
	extendCalc := m.AddCalc(name+".extend", 0, func(q, t int, ud c4.UserData) int { return p.ExtendPenalty }, nil, nil, c4.ProtectUnderflow)

	gap := m.AddState(name)
	mustAdd(m, name+".open", mid, gap, p.DeltaQ, p.DeltaT, openCalc, c4.LabelGap, nil)
	mustAdd(m, name+".extend", gap, gap, p.DeltaQ, p.DeltaT, extendCalc, c4.LabelGap, nil)
	mustAdd(m, name+".close", gap, mid, 0, 0, -1, c4.LabelNone, nil)
}

func mustAdd(m *c4.Model, name string, in, out c4.StateID, dq, dt int, calc c4.CalcID, label c4.Label, data c4.LabelData) c4.TransitionID {
	id, err := m.AddTransition(name, in, out, dq, dt, calc, label, data)
	if err != nil {
		panic(err) // only reachable if the skeleton's own wiring is malformed
	}
	return id
}
