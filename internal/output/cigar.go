package output

import (
	"fmt"
	"strings"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/seqview"
)

// cigarOp classifies a transition into CIGAR's three-letter alphabet
// (spec.md §6): M covers every advance where both axes move (equal or
// unequal lengths), I is a query-only advance (Δt=0), D is a
// target-only advance (Δq=0). Silent (Δq=0,Δt=0) transitions emit
// nothing -- there is no sequence to cover.
func cigarOp(tr *c4.Transition) (byte, bool) {
	switch {
	case tr.DeltaQ == 0 && tr.DeltaT == 0:
		return 0, false
	case tr.DeltaT == 0:
		return 'I', true
	case tr.DeltaQ == 0:
		return 'D', true
	default:
		return 'M', true
	}
}

// WriteCigar renders the SUGAR line followed by space-separated `OP LEN`
// runs (spec.md §6 "CIGAR"). Move length is max(Δq,Δt) summed across every
// op in a run of adjacent transitions sharing the same CIGAR op.
func WriteCigar(a *alignment.Alignment, query, target seqview.Sequence) string {
	var b strings.Builder
	b.WriteString(WriteSugar(a, query, target))

	var curOp byte
	curLen := 0
	flush := func() {
		if curOp != 0 {
			fmt.Fprintf(&b, " %c %d", curOp, curLen)
		}
	}
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		cOp, ok := cigarOp(tr)
		if !ok {
			continue
		}
		moveLen := maxInt(tr.DeltaQ, tr.DeltaT) * op.Length
		if cOp == curOp {
			curLen += moveLen
			continue
		}
		flush()
		curOp, curLen = cOp, moveLen
	}
	flush()
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
