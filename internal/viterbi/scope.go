package viterbi

import "github.com/nfweeks/c4align/internal/c4"

// startAllowed reports whether a terminal state scoped scope may occur at
// (q,t) as the START of an alignment within region (spec.md §3 Scope,
// §4.3). "corner" pins the terminal to the region's near corner; "edge"
// allows either axis' near edge; "query"/"target" pin one axis and leave
// the other free; "anywhere" is unconstrained (local alignment).
func startAllowed(scope c4.Scope, q, t int, region c4.Region) bool {
	switch scope {
	case c4.ScopeCorner:
		return q == region.QStart && t == region.TStart
	case c4.ScopeEdge:
		return q == region.QStart || t == region.TStart
	case c4.ScopeQuery:
		return q == region.QStart
	case c4.ScopeTarget:
		return t == region.TStart
	case c4.ScopeAnywhere:
		return true
	default:
		return false
	}
}

// endAllowed is startAllowed's mirror at the region's far corner/edges.
func endAllowed(scope c4.Scope, q, t int, region c4.Region) bool {
	qEnd, tEnd := region.QStart+region.QLength, region.TStart+region.TLength
	switch scope {
	case c4.ScopeCorner:
		return q == qEnd && t == tEnd
	case c4.ScopeEdge:
		return q == qEnd || t == tEnd
	case c4.ScopeQuery:
		return q == qEnd
	case c4.ScopeTarget:
		return t == tEnd
	case c4.ScopeAnywhere:
		return true
	default:
		return false
	}
}
