package output

import (
	"fmt"
	"strings"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/seqview"
)

// vulgarOp classifies a transition into VULGAR's nine-letter alphabet
// (spec.md §6 "VULGAR"). A match transition whose advances are both 3
// reports as a codon match (C) rather than a plain match (M). Silent
// transitions emit nothing.
func vulgarOp(tr *c4.Transition) (byte, bool) {
	if tr.DeltaQ == 0 && tr.DeltaT == 0 {
		return 0, false
	}
	switch tr.Label {
	case c4.LabelMatch:
		if tr.DeltaQ == 3 && tr.DeltaT == 3 {
			return 'C', true
		}
		return 'M', true
	case c4.LabelGap:
		return 'G', true
	case c4.LabelNER:
		return 'N', true
	case c4.Label5SS:
		return '5', true
	case c4.Label3SS:
		return '3', true
	case c4.LabelIntron:
		return 'I', true
	case c4.LabelSplitCodon:
		return 'S', true
	case c4.LabelFrameshift:
		return 'F', true
	default:
		return 'M', true
	}
}

type vulgarRun struct {
	op         byte
	lenQ, lenT int
}

// WriteVulgar renders the SUGAR line followed by `OP LEN_Q LEN_T` triples
// (spec.md §6 "VULGAR"). Adjacent ops sharing the same VULGAR op coalesce
// into a single run, accumulating Δq/Δt across every underlying
// alignment op.
func WriteVulgar(a *alignment.Alignment, query, target seqview.Sequence) string {
	var b strings.Builder
	b.WriteString(WriteSugar(a, query, target))

	var runs []vulgarRun
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		vOp, ok := vulgarOp(tr)
		if !ok {
			continue
		}
		lenQ, lenT := tr.DeltaQ*op.Length, tr.DeltaT*op.Length
		if n := len(runs); n > 0 && runs[n-1].op == vOp {
			runs[n-1].lenQ += lenQ
			runs[n-1].lenT += lenT
			continue
		}
		runs = append(runs, vulgarRun{op: vOp, lenQ: lenQ, lenT: lenT})
	}
	for _, r := range runs {
		fmt.Fprintf(&b, " %c %d %d", r.op, r.lenQ, r.lenT)
	}
	return b.String()
}
