// Package intron builds the spliced-intron sub-model of spec.md §4.4: the
// NER skeleton (internal/c4/ner) plus 5'/3' splice-site scoring at the
// entry/exit transitions, using internal/splice's predictor so the DP
// engine's path choice trades off intron-open penalty, per-base extension,
// and splice-site confidence the way the original genomic aligners do.
package intron

import (
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/subst"
)

// SpliceScore looks up the donor (5') or acceptor (3') score for the
// target position at which an intron opens or closes. ud is the task's
// c4.UserData, forwarded unexamined so the caller's closure can pull the
// splice.Predictions relevant to the sequence pair being aligned out of
// its own context type.
type SpliceScore func(targetPos int, ud c4.UserData) (int, error)

// Params configures one intron sub-model instance (spec.md §6 "intron:").
type Params struct {
	MinIntron, MaxIntron int
	OpenPenalty          int
	Donor5, Acceptor3    SpliceScore
}

// donorAcceptorBases is the number of target bases each flanking
// transition consumes: the 2-base donor (GT) / acceptor (AG) dinucleotide
// spec.md §4.4 requires a pre-splice transition to advance by and a
// post-splice transition to consume (original_source/src/model/intron.c's
// "+2" adjustment to intron_length accounts for exactly these bases, which
// its body loop never individually steps through).
const donorAcceptorBases = 2

// Build returns an open sub-model: START -[donor score, +2 target bases]->
// intron -[body]*-> intron -[acceptor score, +2 target bases]-> END,
// target-axis only (introns always consume target/genomic sequence, never
// query). A shadow records the target coordinate at the donor transition
// (host -> intron) and reads it back at the acceptor transition (intron ->
// host) to gate the *total* intron length -- donor + body + acceptor --
// against [MinIntron, MaxIntron], not just the body loop's trip count.
func Build(name string, p Params) *c4.Model {
	m := c4.New(name)

	openCalc := m.AddCalc(name+".donor", 0, func(q, t int, ud c4.UserData) int {
		score, err := p.Donor5(t, ud)
		if err != nil {
			return subst.ImpossiblyLow
		}
		return p.OpenPenalty + score
	}, nil, nil, c4.ProtectUnderflow)
	bodyCalc := m.AddCalc(name+".body", 0, func(q, t int, ud c4.UserData) int { return 0 }, nil, nil, c4.ProtectNone)
	closeCalc := m.AddCalc(name+".acceptor", 0, func(q, t int, ud c4.UserData) int {
		score, err := p.Acceptor3(t, ud)
		if err != nil {
			return subst.ImpossiblyLow
		}
		return score
	}, nil, nil, c4.ProtectUnderflow)

	state := m.AddState(name + ".intron")
	mustAdd(m, name+".donor", m.Start(), state, 0, donorAcceptorBases, openCalc, c4.Label5SS, nil)
	mustAdd(m, name+".body", state, state, 0, 1, bodyCalc, c4.LabelIntron, nil)
	acceptor := mustAdd(m, name+".acceptor", state, m.End(), 0, donorAcceptorBases, closeCalc, c4.Label3SS, nil)

	bodyMin, bodyMax := -1, -1
	if p.MinIntron >= 0 {
		bodyMin = p.MinIntron - 2*donorAcceptorBases
		if bodyMin < 0 {
			bodyMin = 0
		}
	}
	if p.MaxIntron >= 0 {
		bodyMax = p.MaxIntron - 2*donorAcceptorBases
		if bodyMax < 0 {
			bodyMax = 0
		}
	}
	m.AddSpan(state, -1, -1, bodyMin, bodyMax)

	m.AddShadow(name+".donor-coord", []c4.StateID{m.Start()}, []c4.TransitionID{acceptor},
		func(q, t int, ud c4.UserData) int { return t },
		func(stored, q, t int, ud c4.UserData) int {
			length := t - stored
			if length < p.MinIntron || length > p.MaxIntron {
				return subst.ImpossiblyLow
			}
			return 0
		})

	return m
}

func mustAdd(m *c4.Model, name string, in, out c4.StateID, dq, dt int, calc c4.CalcID, label c4.Label, data c4.LabelData) c4.TransitionID {
	id, err := m.AddTransition(name, in, out, dq, dt, calc, label, data)
	if err != nil {
		panic(err) // only reachable if Build's own wiring is malformed
	}
	return id
}
