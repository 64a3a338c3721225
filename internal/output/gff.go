package output

import (
	"fmt"
	"strings"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/seqview"
)

// GFFOptions configures GFF v2 rendering (spec.md §6 "GFF v2").
type GFFOptions struct {
	// Source is the GFF "source" column (field 2), e.g. the model-type name.
	Source string
	// ForwardStrandCoords reverses coordinates onto the forward strand when
	// the target is RevComp (spec.md §6: "forward-coordinate reporting when
	// enabled reverses coordinates on revcomp strand").
	ForwardStrandCoords bool
}

type gffFeature struct {
	feature          string
	start, end       int // 1-based inclusive, target-relative
	score            int
	attrs            []string
}

// WriteGFF renders a's gene/exon/intron/splice5/splice3/cds/utr5/utr3/
// similarity features as GFF v2 (spec.md §4.4, §6). Coordinates are
// 1-based inclusive on the target; gapped axes (intron/NER boundaries)
// split the alignment into exon/intron runs, ungapped axes emit a single
// "similarity" feature spanning the whole alignment.
func WriteGFF(a *alignment.Alignment, query, target seqview.Sequence, opt GFFOptions) string {
	var lines []string
	seqname := target.ID()
	source := opt.Source
	if source == "" {
		source = "c4align"
	}
	strand := strandSymbol(target.Strand())

	toCoord := func(tPos int) int {
		if opt.ForwardStrandCoords && target.Strand() == seqview.RevComp {
			return target.Length() - tPos
		}
		return tPos + 1
	}

	regionStart, regionEnd := a.Region.TStart, a.Region.TStart+a.Region.TLength
	geneStart, geneEnd := toCoord(regionStart), toCoord(regionEnd-1)
	if geneStart > geneEnd {
		geneStart, geneEnd = geneEnd, geneStart
	}

	features := buildFeatures(a, toCoord)
	hasIntron := false
	for _, f := range features {
		if f.feature == "intron" {
			hasIntron = true
		}
	}

	emit := func(feature string, start, end, score int, attrs ...string) {
		if start > end {
			start, end = end, start
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%s\t.\t%s",
			seqname, source, feature, start, end, score, strand, strings.Join(attrs, "; ")))
	}

	if hasIntron {
		emit("gene", geneStart, geneEnd, a.Score, fmt.Sprintf("Target %s %d %d", query.ID(), a.Region.QStart, a.Region.QStart+a.Region.QLength))
		for _, f := range features {
			emit(f.feature, f.start, f.end, f.score, f.attrs...)
		}
	} else {
		emit("similarity", geneStart, geneEnd, a.Score, fmt.Sprintf("Target %s %d %d", query.ID(), a.Region.QStart, a.Region.QStart+a.Region.QLength))
	}

	if ann := query.Annotation(); ann.HasCDS() {
		lines = append(lines, cdsUTRFeatures(ann, seqname, source, strand, geneStart, geneEnd)...)
	}

	return strings.Join(lines, "\n")
}

// buildFeatures walks the alignment's ops and emits exon/intron/splice5/
// splice3 runs keyed by target-axis coverage (spec.md §4.4).
func buildFeatures(a *alignment.Alignment, toCoord func(int) int) []gffFeature {
	var out []gffFeature
	t := a.Region.TStart

	flushExon := func(start, end, score int) {
		if end > start {
			out = append(out, gffFeature{feature: "exon", start: toCoord(start), end: toCoord(end - 1), score: score})
		}
	}

	exonStart := t
	exonScore := 0
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		switch tr.Label {
		case c4.LabelIntron:
			flushExon(exonStart, t, exonScore)
			intronStart := t
			t += tr.DeltaT * op.Length
			out = append(out, gffFeature{feature: "intron", start: toCoord(intronStart), end: toCoord(t - 1)})
			exonStart, exonScore = t, 0
		case c4.Label5SS:
			out = append(out, gffFeature{feature: "splice5", start: toCoord(t), end: toCoord(t + tr.DeltaT*op.Length - 1)})
			t += tr.DeltaT * op.Length
		case c4.Label3SS:
			out = append(out, gffFeature{feature: "splice3", start: toCoord(t), end: toCoord(t + tr.DeltaT*op.Length - 1)})
			t += tr.DeltaT * op.Length
		default:
			t += tr.DeltaT * op.Length
		}
	}
	flushExon(exonStart, t, exonScore)
	return out
}

func cdsUTRFeatures(ann *seqview.Annotation, seqname, source, strand string, geneStart, geneEnd int) []string {
	cdsStart := int(*ann.CDSStart)
	cdsEnd := cdsStart + int(*ann.CDSLength) - 1
	var lines []string
	line := func(feature string, start, end int) {
		if start > end {
			return
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t.\t%s\t.\t", seqname, source, feature, start, end, strand))
	}
	line("cds", cdsStart, cdsEnd)
	line("utr5", geneStart, cdsStart-1)
	line("utr3", cdsEnd+1, geneEnd)
	return lines
}
