// Package pcr implements the PCR primer-simulation subsystem of spec.md
// §4.6: primers are expanded into degenerate-mismatch probes, probes are
// indexed in a shared failure-link automaton (internal/fsm), and streaming
// a target sequence through the compiled automaton reports every primer
// pair whose anneal positions yield a product within the configured
// length bounds.
package pcr

import (
	"fmt"

	"github.com/nfweeks/c4align/internal/seqview"
)

// Strand identifies which orientation of a primer a Probe anneals as.
type Strand int

const (
	Forward Strand = iota
	RevComp
)

func (s Strand) String() string {
	if s == RevComp {
		return "revcomp"
	}
	return "forward"
}

// Primer is one PCR primer: its forward symbols, the reverse-complement
// used to detect annealing on the opposite strand, and the seed length
// used for the initial exact/degenerate FSM lookup (spec.md §4.6 "Primer").
type Primer struct {
	ID           string
	Forward      []byte
	RevComp      []byte
	Length       int
	ProbeLength  int
}

// NewPrimer validates symbols and returns a Primer. seedLength of 0 means
// the probe length equals the full primer length (spec.md: "when
// seed_length = 0, probe length equals full length").
func NewPrimer(id string, forward []byte, seedLength int) (*Primer, error) {
	if len(forward) == 0 {
		return nil, fmt.Errorf("pcr: primer %q has empty sequence", id)
	}
	for _, b := range forward {
		if !isIUPACSymbol(b) {
			return nil, fmt.Errorf("pcr: primer %q has invalid symbol %q", id, b)
		}
	}
	probeLen := seedLength
	if probeLen <= 0 || probeLen > len(forward) {
		probeLen = len(forward)
	}
	return &Primer{
		ID: id, Forward: forward, RevComp: reverseComplement(forward),
		Length: len(forward), ProbeLength: probeLen,
	}, nil
}

func reverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = seqview.Complement(b)
	}
	return out
}

func isIUPACSymbol(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', 'R', 'Y', 'S', 'W', 'K', 'M', 'B', 'D', 'H', 'V', 'N',
		'a', 'c', 'g', 't', 'r', 'y', 's', 'w', 'k', 'm', 'b', 'd', 'h', 'v', 'n':
		return true
	default:
		return false
	}
}

// symbols returns the primer's symbols for the given strand.
func (p *Primer) symbols(strand Strand) []byte {
	if strand == RevComp {
		return p.RevComp
	}
	return p.Forward
}

// Probe is one degenerate expansion of a primer's seed prefix (spec.md
// §4.6 "Probe"): a concrete word of length ProbeLength, annealing on
// Strand, carrying the mismatch count accumulated across the probe's seed
// (the remaining primer length is scored during extension at match time).
type Probe struct {
	Primer         *Primer
	Strand         Strand
	SeedMismatches int
	Seed           []byte

	// Experiment is the search this probe was generated for (spec.md
	// §4.6: probes are built per added experiment, even when the same
	// primer is reused across experiments).
	Experiment *Experiment
}
