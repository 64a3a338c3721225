// Package hsp implements the HSP (high-scoring segment pair) seeding
// contract of spec.md §4.5: external to the DP core, it turns a stream of
// candidate (q,t) seed positions into extended, threshold-filtered,
// horizon-deduplicated HSPs that the optimal driver can use to restrict
// its search region.
package hsp

import (
	"sort"
)

// HSP is one extended, accepted high-scoring segment pair.
type HSP struct {
	QStart, TStart int
	Length         int
	Score          int
}

// Params configures extension and horizon behavior.
type Params struct {
	// Threshold rejects any extended HSP scoring below it.
	Threshold int
	// DropOff bounds how far the running partial score may fall below its
	// best-seen value during extension before the extension stops (spec.md
	// §4.5 "asymmetric extension maximizing the prefix sum without letting
	// the partial score go negative").
	DropOff int
	// SeedRepeat requires k seeds on the same diagonal within one page
	// before an HSP is spawned (0 or 1 disables the requirement).
	SeedRepeat int
	// Mask, if set, excludes a position from extension when it returns
	// true (per-strand masking predicate).
	Mask func(q, t int) bool
}

// ScoreFunc scores one aligned (q,t) position, e.g. a substitution matrix
// lookup between query[q] and target[t].
type ScoreFunc func(q, t int) int

// Horizon tracks, per diagonal, the furthest query position already
// covered by an accepted or discarded extension, so overlapping seeds on
// the same diagonal are never re-extended (spec.md §4.5).
type Horizon struct {
	covered map[int]int // diagonal (q-t) -> furthest q extended to
}

// NewHorizon returns an empty horizon.
func NewHorizon() *Horizon { return &Horizon{covered: make(map[int]int)} }

func (h *Horizon) diagonal(q, t int) int { return q - t }

// Covers reports whether (q,t) falls within a diagonal's already-extended
// span.
func (h *Horizon) Covers(q, t int) bool {
	furthest, ok := h.covered[h.diagonal(q, t)]
	return ok && q <= furthest
}

func (h *Horizon) mark(q, t, length int) {
	d := h.diagonal(q, t)
	end := q + length
	if cur, ok := h.covered[d]; !ok || end > cur {
		h.covered[d] = end
	}
}

// SeedHSP extends the seed at (q,t) in both directions along its diagonal,
// tracking the best-scoring prefix with a drop-off cutoff, and either
// returns the resulting HSP or (nil, false) if it falls below
// params.Threshold or was already covered by the horizon (spec.md §4.5
// seed_hsp).
func SeedHSP(q, t int, score ScoreFunc, params Params, horizon *Horizon) (*HSP, bool) {
	if horizon != nil && horizon.Covers(q, t) {
		return nil, false
	}
	if params.Mask != nil && params.Mask(q, t) {
		return nil, false
	}

	// Extend right (increasing q,t), anchored at and including the seed.
	rightEnd, rightScore := extend(q, t, 1, score, params)
	// Extend left (decreasing q,t) starting one position before the seed,
	// so the seed's own score is counted once, by the right sweep only.
	leftStart, leftScore := extend(q-1, t-1, -1, score, params)

	start := leftStart
	length := rightEnd - leftStart
	total := leftScore + rightScore
	if length <= 0 || total < params.Threshold {
		if horizon != nil {
			horizon.mark(minInt(q, start), minInt(t, t-(q-start)), maxInt(length, 1))
		}
		return nil, false
	}
	if horizon != nil {
		horizon.mark(start, t-(q-start), length)
	}
	return &HSP{QStart: start, TStart: t - (q - start), Length: length, Score: total}, true
}

// extend walks one direction (dir = +1 or -1) along the diagonal from
// (q,t), returning the best prefix score reached before drop-off, without
// ever letting the running total fall more than params.DropOff below its
// running maximum, and the q-coordinate boundary of that prefix: its
// exclusive end for dir = +1, its inclusive start for dir = -1. When no
// position raises the score above 0 the prefix is empty and the boundary
// is q (dir = +1) or q+1 (dir = -1).
func extend(q, t, dir int, score ScoreFunc, params Params) (boundary int, best int) {
	pos := 0
	running := 0
	bestPos := -1
	for {
		qq, tt := q+dir*pos, t+dir*pos
		if params.Mask != nil && params.Mask(qq, tt) {
			break
		}
		running += score(qq, tt)
		if running > best {
			best = running
			bestPos = pos
		}
		if best-running > params.DropOff && params.DropOff >= 0 {
			break
		}
		pos++
		if pos > 1<<20 { // pathological-input backstop
			break
		}
	}
	if dir > 0 {
		return q + bestPos + 1, best
	}
	return q - bestPos, best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Seed is one candidate position fed into SeedAll.
type Seed struct{ Q, T int }

// SeedAll implements spec.md §4.5's batch path: seeds are sorted by
// diagonal then by query position and processed with a page-local horizon
// to bound memory, optionally requiring SeedRepeat seeds on a diagonal
// within one page before spawning an HSP.
func SeedAll(seeds []Seed, score ScoreFunc, params Params, pageSize int) []HSP {
	sorted := append([]Seed(nil), seeds...)
	sort.Slice(sorted, func(i, j int) bool {
		di, dj := sorted[i].Q-sorted[i].T, sorted[j].Q-sorted[j].T
		if di != dj {
			return di < dj
		}
		return sorted[i].Q < sorted[j].Q
	})

	var out []HSP
	pageStart := 0
	for pageStart < len(sorted) {
		pageEnd := pageStart + pageSize
		if pageEnd > len(sorted) || pageSize <= 0 {
			pageEnd = len(sorted)
		}
		page := sorted[pageStart:pageEnd]
		horizon := NewHorizon()
		diagonalCounts := make(map[int]int)
		for _, s := range page {
			diagonalCounts[s.Q-s.T]++
		}
		for _, s := range page {
			if params.SeedRepeat > 1 && diagonalCounts[s.Q-s.T] < params.SeedRepeat {
				continue
			}
			if h, ok := SeedHSP(s.Q, s.T, score, params, horizon); ok {
				out = append(out, *h)
			}
		}
		pageStart = pageEnd
	}
	return out
}
