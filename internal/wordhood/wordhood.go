// Package wordhood expands a seed word into every word within a
// score/distance threshold under a substitution matrix (spec.md §4.7),
// used by the PCR simulator for degenerate-primer mismatch enumeration and
// by HSP seeding for neighborhood generation.
package wordhood

import "github.com/nfweeks/c4align/internal/subst"

// Neighbor is one word produced by expansion, with its total score against
// the seed under the supplied matrix.
type Neighbor struct {
	Word  []byte
	Score int
}

// Wordhood expands words over a fixed candidate alphabet.
type Wordhood struct {
	alphabet []byte
	matrix   *subst.Matrix
}

// New returns a Wordhood that substitutes symbols from alphabet, scoring
// each substitution with matrix.
func New(alphabet []byte, matrix *subst.Matrix) *Wordhood {
	return &Wordhood{alphabet: alphabet, matrix: matrix}
}

// Expand returns every word of len(seed) whose total substitution score
// against seed is >= threshold, found by a depth-first search pruned as
// soon as the best achievable completion can no longer reach threshold
// (spec.md §4.7: "pruned when the partial score drops below the
// threshold"). Results are returned in DFS order; callers sort if they
// need a particular order (spec.md: "sorted only as needed by callers").
func (w *Wordhood) Expand(seed []byte, threshold int) []Neighbor {
	n := len(seed)
	if n == 0 {
		return nil
	}

	// remainingMax[i] = sum of the best achievable score from position i
	// to the end; an admissible pruning heuristic.
	remainingMax := make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		best := subst.ImpossiblyLow
		for _, c := range w.alphabet {
			if s := w.matrix.Score(seed[i], c); s > best {
				best = s
			}
		}
		remainingMax[i] = remainingMax[i+1] + best
	}

	var out []Neighbor
	word := make([]byte, n)
	var dfs func(pos, partial int)
	dfs = func(pos, partial int) {
		if partial+remainingMax[pos] < threshold {
			return
		}
		if pos == n {
			cp := make([]byte, n)
			copy(cp, word)
			out = append(out, Neighbor{Word: cp, Score: partial})
			return
		}
		for _, c := range w.alphabet {
			score := w.matrix.Score(seed[pos], c)
			word[pos] = c
			dfs(pos+1, partial+score)
		}
	}
	dfs(0, 0)
	return out
}

// HammingMatrix builds a substitution matrix over alphabet scoring an exact
// match as 0 and any mismatch as -1, so Expand with threshold
// -mismatchThreshold enumerates every word within mismatchThreshold Hamming
// distance of seed -- the PCR simulator's mismatch-enumeration mode
// (spec.md §4.6).
func HammingMatrix(alphabet []byte) *subst.Matrix {
	m := subst.NewMatrix()
	for _, a := range alphabet {
		for _, b := range alphabet {
			if a == b {
				m.Set(a, b, 0)
			} else {
				m.Set(a, b, -1)
			}
		}
	}
	return m
}

// IUPACMatrix builds a degenerate-IUPAC substitution matrix: scores 0 when
// candidate c is one of the bases that degenerate IUPAC symbol seed can
// represent, else -1. Used to expand a primer containing ambiguity codes
// (spec.md §4.6 "degenerate-IUPAC substitution matrix").
func IUPACMatrix() *subst.Matrix {
	m := subst.NewMatrix()
	bases := []byte("ACGT")
	for seedSym, allowed := range iupacCodes {
		for _, c := range bases {
			score := -1
			for _, ok := range allowed {
				if ok == c {
					score = 0
					break
				}
			}
			m.Set(seedSym, c, score)
			m.Set(byte(lowerByte(seedSym)), c, score)
		}
	}
	return m
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

var iupacCodes = map[byte][]byte{
	'A': []byte("A"),
	'C': []byte("C"),
	'G': []byte("G"),
	'T': []byte("T"),
	'R': []byte("AG"),
	'Y': []byte("CT"),
	'S': []byte("GC"),
	'W': []byte("AT"),
	'K': []byte("GT"),
	'M': []byte("AC"),
	'B': []byte("CGT"),
	'D': []byte("AGT"),
	'H': []byte("ACT"),
	'V': []byte("ACG"),
	'N': []byte("ACGT"),
}
