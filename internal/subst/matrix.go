// Package subst provides substitution-matrix score lookups and the
// DNA-codon-to-amino-acid translation table used throughout the C4 model.
package subst

import "math"

// ImpossiblyLow is the sentinel "negative infinity" score used for
// impossible pairs and for DP cells that cannot satisfy a constraint
// (spec.md §3 "a marker -infinity for impossible pairs", §4.3 intron
// length violations, etc). It is chosen far from any real accumulated
// score yet safely summable without int64 overflow in a few thousand
// additions, per spec.md §4.3's overflow/underflow protection note.
const ImpossiblyLow = math.MinInt32 / 4

// Matrix is a 128x128 table of small integer scores over byte symbol pairs,
// as specified in spec.md §3.
type Matrix struct {
	scores [128][128]int
}

// NewMatrix returns a Matrix with every pair initialized to ImpossiblyLow.
func NewMatrix() *Matrix {
	m := &Matrix{}
	for i := range m.scores {
		for j := range m.scores[i] {
			m.scores[i][j] = ImpossiblyLow
		}
	}
	return m
}

// Set assigns the score for the ordered pair (a, b). Symbols above 127 are
// rejected by the caller's alphabet validation (subst.Matrix trusts its
// input is already within [0,128)).
func (m *Matrix) Set(a, b byte, score int) {
	if a >= 128 || b >= 128 {
		return
	}
	m.scores[a][b] = score
}

// Score returns the score for the ordered pair (a, b), or ImpossiblyLow if
// either symbol is out of range.
func (m *Matrix) Score(a, b byte) int {
	if a >= 128 || b >= 128 {
		return ImpossiblyLow
	}
	return m.scores[a][b]
}

// NewDNAMatrix builds a simple match/mismatch DNA substitution matrix over
// {A,C,G,T,a,c,g,t,N,n} with the given match and mismatch scores, and
// ImpossiblyLow for any pair involving an unrecognized symbol other than N.
// N (ambiguous) scores as mismatch against every base, including itself,
// matching exonerate's treatment of unresolved bases.
func NewDNAMatrix(match, mismatch int) *Matrix {
	m := NewMatrix()
	bases := []byte("ACGT")
	for _, a := range bases {
		for _, b := range bases {
			score := mismatch
			if a == b {
				score = match
			}
			for _, ca := range []byte{a, a + ('a' - 'A')} {
				for _, cb := range []byte{b, b + ('a' - 'A')} {
					m.Set(ca, cb, score)
				}
			}
		}
	}
	for _, n := range []byte{'N', 'n'} {
		for _, b := range bases {
			for _, cb := range []byte{b, b + ('a' - 'A')} {
				m.Set(n, cb, mismatch)
				m.Set(cb, n, mismatch)
			}
		}
		m.Set(n, n, mismatch)
	}
	return m
}

// NewProteinMatrix builds a Matrix from a flat row-major score table over
// the 20 standard amino acids, mirroring the shape of a BLOSUM/PAM table
// (see other_examples' soniakeys-bio ScoreMatrix for the layout this
// generalizes from a fixed 20x20 array to the general 128x128 table).
func NewProteinMatrix(alphabet string, table []int) (*Matrix, error) {
	n := len(alphabet)
	if len(table) != n*n {
		return nil, ErrTableSize
	}
	m := NewMatrix()
	for i, a := range []byte(alphabet) {
		for j, b := range []byte(alphabet) {
			m.Set(a, b, table[i*n+j])
		}
	}
	return m, nil
}

// proteinAlphabet is the 20 standard amino acids; seqview's Protein
// alphabet additionally admits ambiguity codes, stop and gap symbols.
const proteinAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// NewIdentityProteinMatrix builds a simple match/mismatch matrix over the
// 20 standard amino acids, for callers with no trained BLOSUM/PAM table to
// hand (spec.md §6 lists protein scoring as configuration-supplied; this
// is the fallback default).
func NewIdentityProteinMatrix(match, mismatch int) *Matrix {
	n := len(proteinAlphabet)
	table := make([]int, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			score := mismatch
			if i == j {
				score = match
			}
			table[i*n+j] = score
		}
	}
	m, err := NewProteinMatrix(proteinAlphabet, table)
	if err != nil {
		panic(err) // table is constructed to exactly n*n above
	}
	return m
}

// ErrTableSize is returned when a flat score table's length does not match
// alphabet length squared.
var ErrTableSize = tableSizeError{}

type tableSizeError struct{}

func (tableSizeError) Error() string { return "subst: score table size does not match alphabet size squared" }
