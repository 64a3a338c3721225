// Package c4 implements the C4 model: a declarative directed multigraph of
// states, labelled transitions (each with a per-transition score
// calculator), shadows, spans, and portals, as specified in spec.md §3-4.1.
// A Model is built open (mutable), then Close()d, which freezes the graph,
// numbers states/transitions contiguously, and precomputes per-state
// incoming/outgoing transition lists for the Viterbi engine.
package c4

import "fmt"

// Scope constrains where in a DP region a terminal state may occur.
type Scope int

const (
	ScopeAnywhere Scope = iota
	ScopeEdge
	ScopeQuery
	ScopeTarget
	ScopeCorner
)

// Label classifies a transition's biological role.
type Label int

const (
	LabelNone Label = iota
	LabelMatch
	LabelGap
	Label5SS
	Label3SS
	LabelIntron
	LabelNER
	LabelSplitCodon
	LabelFrameshift
)

func (l Label) String() string {
	switch l {
	case LabelMatch:
		return "match"
	case LabelGap:
		return "gap"
	case Label5SS:
		return "5SS"
	case Label3SS:
		return "3SS"
	case LabelIntron:
		return "intron"
	case LabelNER:
		return "NER"
	case LabelSplitCodon:
		return "split-codon"
	case LabelFrameshift:
		return "frameshift"
	default:
		return "none"
	}
}

// Protect selects overflow/underflow clamping behavior for a Calc.
type Protect int

const (
	ProtectNone Protect = iota
	ProtectUnderflow
)

// UserData is the opaque per-DP-task context threaded through every
// Calc/init/exit/shadow hook (spec.md §9: "a tagged variant ... dispatched
// by the model at close time"). internal/c4/modeltype.Context, which
// carries an internal/config.Config, is the concrete implementation used
// by the model-type builders.
type UserData interface{}

// ScoreFunc computes a transition's score at the emission coordinates
// (the position *before* advancing by the transition's Δq, Δt).
type ScoreFunc func(qPos, tPos int, ud UserData) int

// RegionFunc runs once per DP region, at init or exit of a Viterbi task.
type RegionFunc func(region Region, ud UserData) error

// ShadowStartFunc stores a value when a shadow's source state is visited.
type ShadowStartFunc func(q, t int, ud UserData) int

// ShadowEndFunc fires at a shadow's destination transition, reading the
// stored value; it returns a score adjustment, or subst.ImpossiblyLow to
// disqualify the path (e.g. an intron-length bound violation).
type ShadowEndFunc func(stored, q, t int, ud UserData) int

// Region is a rectangular DP search area (spec.md §3).
type Region struct {
	QStart, QLength int
	TStart, TLength int
}

// IsWithin reports whether inner is contained in outer, coordinate-wise.
func IsWithin(outer, inner Region) bool {
	return inner.QStart >= outer.QStart &&
		inner.QStart+inner.QLength <= outer.QStart+outer.QLength &&
		inner.TStart >= outer.TStart &&
		inner.TStart+inner.TLength <= outer.TStart+outer.TLength
}

// IsSame reports coordinate-wise equality of two regions.
func IsSame(a, b Region) bool { return a == b }

// StateID, TransitionID, CalcID, ShadowID are arena indices (spec.md §9:
// "arena-plus-index": fields reference states/transitions/calcs/shadows by
// integer id rather than by pointer, so derivations can remap ids instead
// of rewriting a pointer graph).
type StateID int
type TransitionID int
type CalcID int
type ShadowID int

// State is one node of the model graph.
type State struct {
	ID   StateID
	Name string

	// Terminal is true for the two distinguished START/END states.
	Terminal bool
	Scope    Scope

	// CellStart seeds the main DP score at a START state (configured via
	// ConfigureStart); nil elsewhere.
	CellStart func(qPos, tPos int, ud UserData) int
	// RegionInit/RegionExit fire once per DP region at this terminal
	// state (configured via ConfigureStart/ConfigureEnd).
	RegionInit RegionFunc
	RegionExit RegionFunc

	in  []TransitionID
	out []TransitionID
}

// InTransitions returns every transition id whose output is this state.
func (s *State) InTransitions() []TransitionID { return s.in }

// OutTransitions returns every transition id whose input is this state.
func (s *State) OutTransitions() []TransitionID { return s.out }

// Calc is a named score function with an upper bound used for pruning, and
// optional per-region init/exit hooks.
type Calc struct {
	ID         CalcID
	Name       string
	MaxScore   int
	Score      ScoreFunc
	Init       RegionFunc
	Exit       RegionFunc
	Protect    Protect
}

// LabelData carries label-specific side information for a transition, e.g.
// a Match descriptor for LabelMatch transitions. It is intentionally an
// opaque `any` -- c4 does not interpret it, only stores and returns it.
type LabelData any

// SplitCodonRole distinguishes the opening half of a split codon from its
// closing half.
type SplitCodonRole int

const (
	SplitCodonPre SplitCodonRole = iota
	SplitCodonPost
)

// SplitCodonMarker is the LabelData a LabelSplitCodon transition carries
// (spec.md §4.4 "split-codon transitions occur in matching pairs along any
// accepting path"): Pair names the codon instance the transition belongs
// to, Role says which half it is. alignment.Alignment.IsValid uses this to
// confirm every accepting path opens and closes its split codons in
// matching, properly nested pairs.
type SplitCodonMarker struct {
	Pair string
	Role SplitCodonRole
}

// Transition is one directed edge of the model graph.
type Transition struct {
	ID        TransitionID
	Name      string
	Input     StateID
	Output    StateID
	DeltaQ    int
	DeltaT    int
	Calc      CalcID // -1 if no calc (zero score)
	Label     Label
	LabelData LabelData
}

// HasCalc reports whether the transition carries a score calculator.
func (t *Transition) HasCalc() bool { return t.Calc >= 0 }

// IsSilent reports whether the transition advances neither axis.
func (t *Transition) IsSilent() bool { return t.DeltaQ == 0 && t.DeltaT == 0 }

// Shadow is a named auxiliary accumulator: at each visit of a source state
// it records start(q,t); at each destination transition its end(...) fires
// against the recorded value (spec.md §3).
type Shadow struct {
	ID          ShadowID
	Name        string
	Sources     []StateID
	Destinations []TransitionID
	Start       ShadowStartFunc
	End         ShadowEndFunc
	// Designation is this shadow's slot index into a Viterbi cell's
	// shadow-accumulator region (cell[1+Designation]).
	Designation int
}

// Span bounds how many times a self-cycle state may be re-entered along
// each axis (spec.md §3).
type Span struct {
	State                  StateID
	MinQ, MaxQ, MinT, MaxT int
}

// Portal advertises a (calc, Δq, Δt) tuple suitable for heuristic HSP entry
// into the model mid-graph (spec.md §3, §4.5).
type Portal struct {
	Name   string
	Calc   CalcID
	DeltaQ int
	DeltaT int
}

// Model is the open, mutable C4 graph. Use New to create one, mutate it
// with the Add*/Configure*/Insert/MakeStereo methods, then Close it.
type Model struct {
	Name string

	states      []*State
	transitions []*Transition
	calcs       []*Calc
	shadows     []*Shadow
	spans       []*Span
	portals     []*Portal

	startID StateID
	endID   StateID

	extraInit RegionFunc
	extraExit RegionFunc

	closed        bool
	totalShadowDesignations int
}

// New creates an open model with START and END states already present.
func New(name string) *Model {
	m := &Model{Name: name}
	start := &State{Name: "START", Terminal: true, Scope: ScopeCorner}
	end := &State{Name: "END", Terminal: true, Scope: ScopeCorner}
	m.states = append(m.states, start, end)
	start.ID, end.ID = 0, 1
	m.startID, m.endID = 0, 1
	return m
}

func (m *Model) mustBeOpen() {
	if m.closed {
		panic("c4: mutation attempted on a closed model")
	}
}

// Start returns the model's START state id.
func (m *Model) Start() StateID { return m.startID }

// End returns the model's END state id.
func (m *Model) End() StateID { return m.endID }

// State returns the State for id.
func (m *Model) State(id StateID) *State { return m.states[id] }

// Transition returns the Transition for id.
func (m *Model) Transition(id TransitionID) *Transition { return m.transitions[id] }

// Calc returns the Calc for id.
func (m *Model) Calc(id CalcID) *Calc { return m.calcs[id] }

// Shadow returns the Shadow for id.
func (m *Model) Shadow(id ShadowID) *Shadow { return m.shadows[id] }

// Shadows returns every shadow.
func (m *Model) Shadows() []*Shadow { return m.shadows }

// States returns every state in id order.
func (m *Model) States() []*State { return m.states }

// Transitions returns every transition in id order.
func (m *Model) Transitions() []*Transition { return m.transitions }

// Spans returns every span.
func (m *Model) Spans() []*Span { return m.spans }

// Portals returns every portal.
func (m *Model) Portals() []*Portal { return m.portals }

// TotalShadowDesignations returns the number of shadow accumulator slots a
// Viterbi cell for this (closed) model must carry, i.e. 1+this is the
// cell's total size (spec.md §3).
func (m *Model) TotalShadowDesignations() int { return m.totalShadowDesignations }

// IsGlobal reports whether both START and END are scoped to corner,
// meaning an optimal alignment must span the entire region (spec.md §4.1).
func (m *Model) IsGlobal() bool {
	return m.states[m.startID].Scope == ScopeCorner && m.states[m.endID].Scope == ScopeCorner
}

// AddState adds a new, non-terminal state.
func (m *Model) AddState(name string) StateID {
	m.mustBeOpen()
	s := &State{Name: name}
	s.ID = StateID(len(m.states))
	m.states = append(m.states, s)
	return s.ID
}

// AddCalc registers a named score function.
func (m *Model) AddCalc(name string, maxScore int, score ScoreFunc, init, exit RegionFunc, protect Protect) CalcID {
	m.mustBeOpen()
	c := &Calc{
		ID: CalcID(len(m.calcs)), Name: name, MaxScore: maxScore,
		Score: score, Init: init, Exit: exit, Protect: protect,
	}
	m.calcs = append(m.calcs, c)
	return c.ID
}

// AddTransition adds a directed edge in -> out with advances (Δq, Δt), an
// optional calc (pass -1 for none, meaning zero score), a label, and
// optional label data.
func (m *Model) AddTransition(name string, in, out StateID, deltaQ, deltaT int, calc CalcID, label Label, labelData LabelData) (TransitionID, error) {
	m.mustBeOpen()
	if deltaQ < 0 || deltaT < 0 {
		return 0, fmt.Errorf("c4: transition %q has negative advance (%d,%d)", name, deltaQ, deltaT)
	}
	if label == LabelMatch && deltaQ == 0 && deltaT == 0 {
		return 0, fmt.Errorf("c4: match transition %q requires max(Δq,Δt) > 0", name)
	}
	if int(in) >= len(m.states) || int(out) >= len(m.states) {
		return 0, fmt.Errorf("c4: transition %q references unknown state", name)
	}
	t := &Transition{
		ID: TransitionID(len(m.transitions)), Name: name, Input: in, Output: out,
		DeltaQ: deltaQ, DeltaT: deltaT, Calc: calc, Label: label, LabelData: labelData,
	}
	m.transitions = append(m.transitions, t)
	m.states[in].out = append(m.states[in].out, t.ID)
	m.states[out].in = append(m.states[out].in, t.ID)
	return t.ID, nil
}

// AddShadow registers a named auxiliary accumulator over sources and
// destination transitions.
func (m *Model) AddShadow(name string, sources []StateID, destinations []TransitionID, start ShadowStartFunc, end ShadowEndFunc) ShadowID {
	m.mustBeOpen()
	s := &Shadow{
		ID: ShadowID(len(m.shadows)), Name: name, Sources: sources,
		Destinations: destinations, Start: start, End: end,
		Designation: m.totalShadowDesignations,
	}
	m.totalShadowDesignations++
	m.shadows = append(m.shadows, s)
	return s.ID
}

// AddSpan bounds the self-cycle re-entry count of state by [minQ,maxQ] and
// [minT,maxT] (use a negative bound to leave that side unconstrained).
func (m *Model) AddSpan(state StateID, minQ, maxQ, minT, maxT int) {
	m.mustBeOpen()
	m.spans = append(m.spans, &Span{State: state, MinQ: minQ, MaxQ: maxQ, MinT: minT, MaxT: maxT})
}

// AddPortal advertises a (calc, Δq, Δt) entry point for heuristic seeding.
func (m *Model) AddPortal(name string, calc CalcID, deltaQ, deltaT int) {
	m.mustBeOpen()
	m.portals = append(m.portals, &Portal{Name: name, Calc: calc, DeltaQ: deltaQ, DeltaT: deltaT})
}

// ConfigureStart sets START's scope and optional cell-seed/init hooks.
func (m *Model) ConfigureStart(scope Scope, cellStart func(qPos, tPos int, ud UserData) int, init RegionFunc) {
	m.mustBeOpen()
	s := m.states[m.startID]
	s.Scope, s.CellStart, s.RegionInit = scope, cellStart, init
}

// ConfigureEnd sets END's scope and optional init hook.
func (m *Model) ConfigureEnd(scope Scope, init RegionFunc) {
	m.mustBeOpen()
	s := m.states[m.endID]
	s.Scope, s.RegionInit = scope, init
}

// ConfigureExtra installs per-region init/exit hooks that run once for the
// whole model regardless of which states are visited (spec.md §4.1).
func (m *Model) ConfigureExtra(init, exit RegionFunc) {
	m.mustBeOpen()
	m.extraInit, m.extraExit = init, exit
}

// RunInit invokes every registered init hook (extra, terminal states, and
// calcs) for region with the given user data context.
func (m *Model) RunInit(region Region, ud UserData) error {
	if m.extraInit != nil {
		if err := m.extraInit(region, ud); err != nil {
			return err
		}
	}
	for _, s := range []*State{m.states[m.startID], m.states[m.endID]} {
		if s.RegionInit != nil {
			if err := s.RegionInit(region, ud); err != nil {
				return err
			}
		}
	}
	for _, c := range m.calcs {
		if c.Init != nil {
			if err := c.Init(region, ud); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunExit invokes every registered exit hook, best-effort (errors are
// discarded and do not stop remaining hooks from running, since exit hooks
// typically release resources acquired by init).
func (m *Model) RunExit(region Region, ud UserData) {
	for _, c := range m.calcs {
		if c.Exit != nil {
			_ = c.Exit(region, ud)
		}
	}
	for _, s := range []*State{m.states[m.startID], m.states[m.endID]} {
		if s.RegionExit != nil {
			_ = s.RegionExit(region, ud)
		}
	}
	if m.extraExit != nil {
		_ = m.extraExit(region, ud)
	}
}
