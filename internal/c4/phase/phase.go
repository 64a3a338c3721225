// Package phase builds the phase / split-codon sub-model of spec.md §4.4:
// an intron whose splice sites fall inside a codon rather than exactly on
// its boundary. It offers three parallel paths between the same
// entry/exit points -- a direct 0:0 path (the codon boundary and the
// intron boundary coincide, so a plain intron.Build suffices) and two
// split-codon paths, 1:2 and 2:1, each bracketing a nested intron.Build
// instance with a pair of LabelSplitCodon transitions that consume the
// codon's bases either side of the intron.
package phase

import (
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/c4/intron"
)

// SplitScore scores the codon a 1:2 or 2:1 path reconstructs once both of
// its flanking transitions have been traversed. entryT is the target
// position recorded when the path was entered (before the PRE transition
// consumed its share of the codon's target bases); q/t are the
// query/target positions just after the POST transition has consumed its
// own bases, so those bases end immediately before (q,t). ud
// is the task's c4.UserData, forwarded unexamined.
type SplitScore func(entryT, qPos, tPos int, ud c4.UserData) int

// Params configures one phase sub-model instance (spec.md §4.4).
type Params struct {
	Intron intron.Params

	// QueryAdvance is the number of query-axis positions one full codon
	// step consumes outside an intron: 3 for a DNA-axis query
	// (buildCoding2Genome's codon-stepping path), whose bases can
	// themselves be split across the intron the same way the target's
	// are, or 1 for a protein-axis query (buildProtein2Genome), whose
	// single indivisible residue is charged entirely once the intron has
	// been fully traversed.
	QueryAdvance int

	// Phase1 scores the reconstructed codon for the 1:2 path (1 target
	// base before the intron, 2 after); Phase2 scores the 2:1 path.
	Phase1, Phase2 SplitScore
}

// Build returns an open sub-model with the same START/END merge contract
// as intron.Build, carrying three paths in parallel: the direct 0:0 intron
// plus the 1:2 and 2:1 split-codon paths. Each split-codon path tags its
// pre/post transitions with a c4.SplitCodonMarker sharing a Pair name, so
// alignment.Alignment.IsValid can confirm any accepted path opens and
// closes its split codons in matching pairs.
func Build(name string, p Params) *c4.Model {
	m := c4.New(name)

	direct := m.AddState(name + ".direct")
	mustAdd(m, name+".direct-in", m.Start(), direct, 0, 0, -1, c4.LabelNone, nil)
	mustAdd(m, name+".direct-out", direct, m.End(), 0, 0, -1, c4.LabelNone, nil)

	placeholder00 := mustAdd(m, name+".intron-site.00", direct, direct, 0, 0, -1, c4.LabelIntron, nil)
	sub00 := intron.Build(name+".intron00", p.Intron)
	if _, err := m.Insert(sub00, placeholder00); err != nil {
		panic(err) // only reachable if Build's own wiring is malformed
	}

	buildSplit(m, name+".phase1", p, 1, 2, p.Phase1)
	buildSplit(m, name+".phase2", p, 2, 1, p.Phase2)

	return m
}

// buildSplit wires one split-codon path: START -[pre, LabelSplitCodon]->
// mid -[nested intron]-> mid -[post, LabelSplitCodon, scored]-> END.
// preT/postT are the target bases the pre/post transitions each consume
// (1 and 2, or 2 and 1); the query-axis split mirrors the target split
// only when the query itself is DNA (QueryAdvance == 3) -- a protein
// query consumes nothing at pre and its whole residue at post.
func buildSplit(m *c4.Model, name string, p Params, preT, postT int, score SplitScore) {
	preQ, postQ := 0, p.QueryAdvance
	if p.QueryAdvance == 3 {
		preQ, postQ = preT, postT
	}

	open := m.AddState(name + ".open")
	mid := m.AddState(name + ".mid")
	closeSt := m.AddState(name + ".close")

	mustAdd(m, name+".enter", m.Start(), open, 0, 0, -1, c4.LabelNone, nil)
	mustAdd(m, name+".pre", open, mid, preQ, preT, -1, c4.LabelSplitCodon,
		c4.SplitCodonMarker{Pair: name, Role: c4.SplitCodonPre})

	placeholder := mustAdd(m, name+".intron-site", mid, mid, 0, 0, -1, c4.LabelIntron, nil)
	sub := intron.Build(name+".intron", p.Intron)
	if _, err := m.Insert(sub, placeholder); err != nil {
		panic(err)
	}

	post := mustAdd(m, name+".post", mid, closeSt, postQ, postT, -1, c4.LabelSplitCodon,
		c4.SplitCodonMarker{Pair: name, Role: c4.SplitCodonPost})
	mustAdd(m, name+".exit", closeSt, m.End(), 0, 0, -1, c4.LabelNone, nil)

	// The codon's pre-intron target bases vanish from view once the
	// intron's own length has been traversed (t at POST-time reflects
	// only the post-intron bases); this shadow carries the pre-intron
	// target coordinate across the intron so score can re-read them.
	m.AddShadow(name+".entry-t", []c4.StateID{m.Start()}, []c4.TransitionID{post},
		func(q, t int, ud c4.UserData) int { return t },
		func(stored, q, t int, ud c4.UserData) int { return score(stored, q, t, ud) })
}

func mustAdd(m *c4.Model, name string, in, out c4.StateID, dq, dt int, calc c4.CalcID, label c4.Label, data c4.LabelData) c4.TransitionID {
	id, err := m.AddTransition(name, in, out, dq, dt, calc, label, data)
	if err != nil {
		panic(err) // only reachable if Build's own wiring is malformed
	}
	return id
}
