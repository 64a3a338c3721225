package pcr

// Match is one surviving probe anneal (spec.md §4.6 "Match"): a probe that
// matched at Pos (the index of the anneal's first symbol in the target)
// with a total mismatch count across its full length.
type Match struct {
	Probe      *Probe
	Pos        int
	Mismatches int
}

// ProductLength returns the PCR product span a pair of matches would
// produce: the distance between them plus b's primer length (spec.md:
// "distance to new hit plus primer length").
func ProductLength(a, b Match) int {
	return b.Pos - a.Pos + b.Probe.Primer.Length
}

// Experiment is one primer pair search (spec.md §4.6 "Experiment").
type Experiment struct {
	ID                          string
	PrimerA, PrimerB            *Primer
	MinProductLen, MaxProductLen int

	matches []Match // ordered by Pos ascending
}

// Report is invoked once per candidate product; returning true stops the
// simulation for the sequence currently being scanned.
type Report func(exp *Experiment, a, b Match, productLen int) bool

// recordMatch inserts m (assumed to arrive in non-decreasing Pos order,
// which Traverse guarantees), evicts matches that have fallen out of
// range, then reports every forward/revcomp pair now in range (spec.md
// §4.6 "Simulation").
func (e *Experiment) recordMatch(m Match, report Report) (stop bool) {
	for len(e.matches) > 0 && ProductLength(e.matches[0], m) > e.MaxProductLen {
		e.matches = e.matches[1:]
	}

	if m.Probe.Strand == RevComp {
		for _, older := range e.matches {
			if older.Probe.Strand != Forward {
				continue
			}
			pl := ProductLength(older, m)
			if pl < e.MinProductLen || pl > e.MaxProductLen {
				continue
			}
			if report(e, older, m, pl) {
				stop = true
			}
		}
	}

	e.matches = append(e.matches, m)
	return stop
}
