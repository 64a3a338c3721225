package pcr

import (
	"errors"
	"fmt"

	"github.com/nfweeks/c4align/internal/fsm"
	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/subst"
	"github.com/nfweeks/c4align/internal/wordhood"
)

// ErrUsage reports a PCR engine usage error (spec.md §4.6 "Failure
// semantics"): adding an experiment after Prepare, or simulating before it.
var ErrUsage = errors.New("pcr: usage error")

// Engine drives the shared FSM across every added experiment: it expands
// primers into degenerate probes, compiles the failure-link automaton once,
// then streams target sequences through it (spec.md §4.6).
type Engine struct {
	MismatchThreshold int

	fsm      *fsm.FSM[*Sensor]
	wordhood *wordhood.Wordhood
	extend   *subst.Matrix

	experiments []*Experiment
	prepared    bool
}

// NewEngine returns an Engine that expands primers with the given maximum
// seed mismatch count under a degenerate-IUPAC substitution matrix.
func NewEngine(mismatchThreshold int) *Engine {
	f := fsm.New(mergeSensors, mergeSensors)
	f.SetInsertFilter(seqview.Unmask)
	f.SetTraverseFilter(seqview.Unmask)
	return &Engine{
		MismatchThreshold: mismatchThreshold,
		fsm:               f,
		wordhood:          wordhood.New([]byte("ACGT"), wordhood.IUPACMatrix()),
		extend:            wordhood.IUPACMatrix(),
	}
}

// AddExperiment expands primerA and primerB (forward and reverse-complement,
// each) into probes, inserts them into the shared FSM, and registers the
// experiment. Must be called before Prepare.
func (e *Engine) AddExperiment(id string, primerA, primerB *Primer, minProductLen, maxProductLen int) (*Experiment, error) {
	if e.prepared {
		return nil, fmt.Errorf("%w: AddExperiment called after Prepare", ErrUsage)
	}
	exp := &Experiment{ID: id, PrimerA: primerA, PrimerB: primerB, MinProductLen: minProductLen, MaxProductLen: maxProductLen}
	for _, primer := range []*Primer{primerA, primerB} {
		if primer == nil {
			continue
		}
		e.expandAndInsert(exp, primer)
	}
	e.experiments = append(e.experiments, exp)
	return exp, nil
}

func (e *Engine) expandAndInsert(exp *Experiment, primer *Primer) {
	for _, strand := range []Strand{Forward, RevComp} {
		full := primer.symbols(strand)
		seed := full[:primer.ProbeLength]
		for _, nb := range e.wordhood.Expand(seed, -e.MismatchThreshold) {
			probe := &Probe{Primer: primer, Strand: strand, SeedMismatches: -nb.Score, Seed: nb.Word, Experiment: exp}
			e.fsm.Add(nb.Word, len(nb.Word), &Sensor{Probes: []*Probe{probe}})
		}
	}
}

// Prepare compiles the automaton; must be called exactly once before
// Simulate, and AddExperiment must not be called afterward.
func (e *Engine) Prepare() error {
	if e.prepared {
		return fmt.Errorf("%w: Prepare called twice", ErrUsage)
	}
	e.fsm.Compile()
	e.prepared = true
	return nil
}

// Simulate streams seq through the compiled automaton, reporting every
// candidate PCR product via report (spec.md §4.6 "Simulation"). report may
// return true to stop scanning the current sequence early.
func (e *Engine) Simulate(seq seqview.Sequence, report Report) error {
	if !e.prepared {
		return fmt.Errorf("%w: Simulate called before Prepare", ErrUsage)
	}

	symbols := make([]byte, seq.Length())
	for i := range symbols {
		b, err := seq.Get(i)
		if err != nil {
			return fmt.Errorf("pcr: reading sequence %q at %d: %w", seq.ID(), i, err)
		}
		symbols[i] = b
	}

	stopped := false
	e.fsm.Traverse(symbols, func(pos int, sensor *Sensor) {
		if stopped || sensor == nil {
			return
		}
		for _, probe := range sensor.Probes {
			m, ok := e.extendProbe(symbols, pos, probe)
			if !ok {
				continue
			}
			if probe.Experiment.recordMatch(m, report) {
				stopped = true
			}
		}
	})
	return nil
}

// extendProbe scans the primer's remaining length-probeLength symbols past
// the seed match at pos, counting mismatches under the degenerate-IUPAC
// matrix, and discards the hit if cumulative mismatches exceed the
// threshold (spec.md §4.6 "Simulation").
func (e *Engine) extendProbe(symbols []byte, pos int, probe *Probe) (Match, bool) {
	start := pos - probe.Primer.ProbeLength + 1
	if start < 0 {
		return Match{}, false
	}
	end := start + probe.Primer.Length
	if end > len(symbols) {
		return Match{}, false
	}

	mismatches := probe.SeedMismatches
	full := probe.Primer.symbols(probe.Strand)
	for i := probe.Primer.ProbeLength; i < probe.Primer.Length; i++ {
		if e.extend.Score(full[i], seqview.Unmask(symbols[start+i])) < 0 {
			mismatches++
			if mismatches > e.MismatchThreshold {
				return Match{}, false
			}
		}
	}
	return Match{Probe: probe, Pos: start, Mismatches: mismatches}, true
}
