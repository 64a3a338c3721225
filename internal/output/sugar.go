// Package output implements the external (non-core) alignment text
// formatters of spec.md §6: SUGAR, CIGAR, VULGAR, GFF v2, and RYO
// templating. Each formatter consumes an *alignment.Alignment plus the
// query/target seqview.Sequence it was computed over and renders one of
// the documented external text forms; none of them participate in the
// C4/Viterbi/Alignment core contract.
package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/seqview"
)

// ErrFormat reports a malformed output line (spec.md §7 "unknown format
// token").
var ErrFormat = errors.New("output: format error")

// Sugar is the parsed form of one `sugar:` line (spec.md §6).
type Sugar struct {
	QID               string
	QStart, QEnd      int
	QStrand           seqview.Strand
	TID               string
	TStart, TEnd      int
	TStrand           seqview.Strand
	Score             int
}

// WriteSugar renders `sugar: q_id q_start q_end q_strand t_id t_start
// t_end t_strand score` for a.
func WriteSugar(a *alignment.Alignment, query, target seqview.Sequence) string {
	s := sugarOf(a, query, target)
	return formatSugar(s)
}

func sugarOf(a *alignment.Alignment, query, target seqview.Sequence) Sugar {
	return Sugar{
		QID: query.ID(), QStart: a.Region.QStart, QEnd: a.Region.QStart + a.Region.QLength, QStrand: query.Strand(),
		TID: target.ID(), TStart: a.Region.TStart, TEnd: a.Region.TStart + a.Region.TLength, TStrand: target.Strand(),
		Score: a.Score,
	}
}

func formatSugar(s Sugar) string {
	return fmt.Sprintf("sugar: %s %d %d %s %s %d %d %s %d",
		s.QID, s.QStart, s.QEnd, strandSymbol(s.QStrand),
		s.TID, s.TStart, s.TEnd, strandSymbol(s.TStrand),
		s.Score)
}

func strandSymbol(s seqview.Strand) string {
	switch s {
	case seqview.Forward:
		return "+"
	case seqview.RevComp:
		return "-"
	default:
		return "."
	}
}

func parseStrand(tok string) (seqview.Strand, error) {
	switch tok {
	case "+":
		return seqview.Forward, nil
	case "-":
		return seqview.RevComp, nil
	case ".":
		return seqview.UnknownStrand, nil
	default:
		return seqview.UnknownStrand, fmt.Errorf("%w: invalid strand token %q", ErrFormat, tok)
	}
}

// ParseSugar parses one `sugar: ...` line back into a Sugar value, the
// inverse of WriteSugar (spec.md §8 property 7: the SUGAR round trip).
func ParseSugar(line string) (Sugar, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "sugar:"))
	if !strings.HasPrefix(strings.TrimSpace(line), "sugar:") {
		return Sugar{}, fmt.Errorf("%w: line does not start with %q", ErrFormat, "sugar:")
	}
	if len(fields) != 9 {
		return Sugar{}, fmt.Errorf("%w: expected 9 fields after \"sugar:\", got %d", ErrFormat, len(fields))
	}

	qStart, err := strconv.Atoi(fields[1])
	if err != nil {
		return Sugar{}, fmt.Errorf("%w: q_start: %v", ErrFormat, err)
	}
	qEnd, err := strconv.Atoi(fields[2])
	if err != nil {
		return Sugar{}, fmt.Errorf("%w: q_end: %v", ErrFormat, err)
	}
	qStrand, err := parseStrand(fields[3])
	if err != nil {
		return Sugar{}, err
	}
	tStart, err := strconv.Atoi(fields[5])
	if err != nil {
		return Sugar{}, fmt.Errorf("%w: t_start: %v", ErrFormat, err)
	}
	tEnd, err := strconv.Atoi(fields[6])
	if err != nil {
		return Sugar{}, fmt.Errorf("%w: t_end: %v", ErrFormat, err)
	}
	tStrand, err := parseStrand(fields[7])
	if err != nil {
		return Sugar{}, err
	}
	score, err := strconv.Atoi(fields[8])
	if err != nil {
		return Sugar{}, fmt.Errorf("%w: score: %v", ErrFormat, err)
	}

	return Sugar{
		QID: fields[0], QStart: qStart, QEnd: qEnd, QStrand: qStrand,
		TID: fields[4], TStart: tStart, TEnd: tEnd, TStrand: tStrand,
		Score: score,
	}, nil
}
