package c4

import "fmt"

// DerivationMap records, for each transition id in a derived model, the
// transition id in its source model it was copied from (spec.md §4.1
// "model derivation with transition-id remapping"). Alignment.ImportDerived
// uses this to translate an alignment found against a derived model back
// into the coordinate space of the original.
type DerivationMap map[TransitionID]TransitionID

// Derive builds a new open Model containing every state of m, but only the
// transitions for which keep returns true. Unreachable states are not
// removed (the caller Closes the result, which will reject it if keep
// disconnected the graph) -- derivation narrows the transition set for a
// restricted sub-model (e.g. "GT-AG-only splicing", "no frameshifts")
// without hand-rebuilding the graph.
func (m *Model) Derive(name string, keep func(*Transition) bool) (*Model, DerivationMap) {
	d := &Model{Name: name}
	for _, s := range m.states {
		cp := *s
		cp.in, cp.out = nil, nil
		d.states = append(d.states, &cp)
	}
	d.startID, d.endID = m.startID, m.endID
	d.calcs = m.calcs
	d.extraInit, d.extraExit = m.extraInit, m.extraExit

	derivation := make(DerivationMap)
	for _, t := range m.transitions {
		if !keep(t) {
			continue
		}
		cp := *t
		cp.ID = TransitionID(len(d.transitions))
		d.transitions = append(d.transitions, &cp)
		d.states[cp.Input].out = append(d.states[cp.Input].out, cp.ID)
		d.states[cp.Output].in = append(d.states[cp.Output].in, cp.ID)
		derivation[cp.ID] = t.ID
	}

	keptTransition := func(tid TransitionID) bool {
		for _, orig := range derivation {
			if orig == tid {
				return true
			}
		}
		return false
	}
	for _, sh := range m.shadows {
		var dests []TransitionID
		for _, tid := range sh.Destinations {
			if keptTransition(tid) {
				dests = append(dests, tid)
			}
		}
		if len(dests) > 0 {
			cp := *sh
			cp.Destinations = dests
			d.shadows = append(d.shadows, &cp)
		}
	}
	d.totalShadowDesignations = m.totalShadowDesignations
	for _, sp := range m.spans {
		cp := *sp
		d.spans = append(d.spans, &cp)
	}
	for _, p := range m.portals {
		cp := *p
		d.portals = append(d.portals, &cp)
	}
	return d, derivation
}

// MakeStereo duplicates m's non-terminal graph into two parallel copies --
// forwardSuffix and reverseSuffix -- that share only the original START and
// END states (spec.md §4.1 "stereo duplication": used to model a
// transcript's forward- and reverse-strand reading of the same region
// within one DP pass). Transition names and state names in each copy are
// suffixed to keep them distinguishable; both copies share the original
// calcs under their original names (a calc is a pure function of
// (qPos,tPos,ud), so duplication needs no calc-level copy).
func (m *Model) MakeStereo(forwardSuffix, reverseSuffix string) *Model {
	out := &Model{Name: m.Name + ".stereo"}
	out.states = append(out.states, &State{Name: "START", Terminal: true, Scope: m.states[m.startID].Scope,
		CellStart: m.states[m.startID].CellStart, RegionInit: m.states[m.startID].RegionInit})
	out.states = append(out.states, &State{Name: "END", Terminal: true, Scope: m.states[m.endID].Scope,
		RegionInit: m.states[m.endID].RegionInit})
	out.states[0].ID, out.states[1].ID = 0, 1
	out.startID, out.endID = 0, 1
	out.calcs = m.calcs
	out.extraInit, out.extraExit = m.extraInit, m.extraExit

	copyOnce := func(suffix string) map[StateID]StateID {
		remap := map[StateID]StateID{m.startID: out.startID, m.endID: out.endID}
		for _, s := range m.states {
			if s.Terminal {
				continue
			}
			cp := &State{Name: s.Name + suffix, Scope: s.Scope, CellStart: s.CellStart,
				RegionInit: s.RegionInit, RegionExit: s.RegionExit}
			cp.ID = StateID(len(out.states))
			out.states = append(out.states, cp)
			remap[s.ID] = cp.ID
		}
		for _, t := range m.transitions {
			in, out1 := remap[t.Input], remap[t.Output]
			nt := &Transition{
				ID: TransitionID(len(out.transitions)), Name: t.Name + suffix,
				Input: in, Output: out1, DeltaQ: t.DeltaQ, DeltaT: t.DeltaT,
				Calc: t.Calc, Label: t.Label, LabelData: t.LabelData,
			}
			out.transitions = append(out.transitions, nt)
			out.states[in].out = append(out.states[in].out, nt.ID)
			out.states[out1].in = append(out.states[out1].in, nt.ID)
		}
		for _, sp := range m.spans {
			out.spans = append(out.spans, &Span{State: remap[sp.State], MinQ: sp.MinQ, MaxQ: sp.MaxQ, MinT: sp.MinT, MaxT: sp.MaxT})
		}
		return remap
	}

	copyOnce(forwardSuffix)
	copyOnce(reverseSuffix)
	out.totalShadowDesignations = m.totalShadowDesignations
	return out
}

// Insert splices sub's graph into host, replacing the placeholder
// transition at, which must be silent (Δq=Δt=0) with no calc: sub's START
// is merged into at's input state, sub's END into at's output state, and
// every other sub state/transition/shadow is copied in. It returns the set
// of newly added transition ids, so the caller can attach further shadows
// or spans against them.
func (host *Model) Insert(sub *Model, at TransitionID) ([]TransitionID, error) {
	host.mustBeOpen()
	placeholder := host.transitions[at]
	if !placeholder.IsSilent() || placeholder.HasCalc() {
		return nil, fmt.Errorf("c4: Insert requires a silent, calc-free placeholder transition, got %q", placeholder.Name)
	}

	remapState := map[StateID]StateID{sub.startID: placeholder.Input, sub.endID: placeholder.Output}
	for _, s := range sub.states {
		if s.Terminal {
			continue
		}
		id := host.AddState(s.Name)
		ns := host.states[id]
		ns.Scope, ns.CellStart, ns.RegionInit, ns.RegionExit = s.Scope, s.CellStart, s.RegionInit, s.RegionExit
		remapState[s.ID] = id
	}

	calcOffset := CalcID(len(host.calcs))
	host.calcs = append(host.calcs, sub.calcs...)
	for i := range host.calcs[calcOffset:] {
		host.calcs[int(calcOffset)+i].ID = calcOffset + CalcID(i)
	}

	remapTransition := make(map[TransitionID]TransitionID)
	var added []TransitionID
	for _, t := range sub.transitions {
		calc := CalcID(-1)
		if t.HasCalc() {
			calc = t.Calc + calcOffset
		}
		id, err := host.AddTransition(t.Name, remapState[t.Input], remapState[t.Output], t.DeltaQ, t.DeltaT, calc, t.Label, t.LabelData)
		if err != nil {
			return nil, err
		}
		remapTransition[t.ID] = id
		added = append(added, id)
	}

	for _, sh := range sub.shadows {
		var sources []StateID
		for _, s := range sh.Sources {
			sources = append(sources, remapState[s])
		}
		var dests []TransitionID
		for _, tid := range sh.Destinations {
			dests = append(dests, remapTransition[tid])
		}
		host.AddShadow(sh.Name, sources, dests, sh.Start, sh.End)
	}
	for _, sp := range sub.spans {
		host.AddSpan(remapState[sp.State], sp.MinQ, sp.MaxQ, sp.MinT, sp.MaxT)
	}

	// Remove the placeholder: it has been superseded by sub's graph.
	host.removeTransition(at)
	return added, nil
}

func (m *Model) removeTransition(id TransitionID) {
	t := m.transitions[id]
	m.states[t.Input].out = removeID(m.states[t.Input].out, id)
	m.states[t.Output].in = removeID(m.states[t.Output].in, id)
	t.Input, t.Output = -1, -1
	t.DeltaQ, t.DeltaT = -1, -1
}

func removeID(ids []TransitionID, target TransitionID) []TransitionID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
