// Package ner builds the non-equivalenced-region sub-model (original_source
// src/model/ner.c, supplemented per SPEC_FULL.md §4): a span-bounded
// self-loop representing unspliced insertions in genomic sequence, used by
// the est2genome/cdna2genome model types. Structurally it is the intron
// sub-model of spec.md §4.4 with the splice-site scoring stripped out --
// an open penalty on entry, then a bare per-base loop bounded by
// [min_ner, max_ner].
package ner

import "github.com/nfweeks/c4align/internal/c4"

// Params configures one NER sub-model instance.
type Params struct {
	MinNER, MaxNER int
	OpenPenalty    int
	// Axis selects which coordinate the NER consumes: DeltaQ/DeltaT of
	// (1,0) for a query-side NER, (0,1) for target-side.
	DeltaQ, DeltaT int
}

// Build returns an open sub-model: START -[ner-open]-> ner -[ner-body]*->
// ner -[ner-close]-> END, with a span bounding the self-loop's re-entry
// count by Params' axis. The caller Inserts this between two states of a
// host model via (*c4.Model).Insert.
func Build(name string, p Params) *c4.Model {
	m := c4.New(name)
	openCalc := m.AddCalc(name+".open", 0, func(q, t int, ud c4.UserData) int { return p.OpenPenalty }, nil, nil, c4.ProtectUnderflow)
	bodyCalc := m.AddCalc(name+".body", 0, func(q, t int, ud c4.UserData) int { return 0 }, nil, nil, c4.ProtectNone)

	state := m.AddState(name + ".ner")
	mustAdd(m, name+".open", m.Start(), state, p.DeltaQ, p.DeltaT, openCalc, c4.LabelNER, nil)
	mustAdd(m, name+".body", state, state, p.DeltaQ, p.DeltaT, bodyCalc, c4.LabelNER, nil)
	mustAdd(m, name+".close", state, m.End(), 0, 0, -1, c4.LabelNone, nil)

	minQ, maxQ, minT, maxT := -1, -1, -1, -1
	if p.DeltaQ > 0 {
		minQ, maxQ = p.MinNER, p.MaxNER
	}
	if p.DeltaT > 0 {
		minT, maxT = p.MinNER, p.MaxNER
	}
	m.AddSpan(state, minQ, maxQ, minT, maxT)
	return m
}

func mustAdd(m *c4.Model, name string, in, out c4.StateID, dq, dt int, calc c4.CalcID, label c4.Label, data c4.LabelData) {
	if _, err := m.AddTransition(name, in, out, dq, dt, calc, label, data); err != nil {
		panic(err) // only reachable if Build's own wiring is malformed
	}
}
