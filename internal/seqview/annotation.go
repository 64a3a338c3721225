package seqview

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AnnotationSet maps sequence id -> Annotation, the side-channel text file
// format named in spec.md §6: "id -> (strand, optional CDS start 1-based,
// optional CDS length)".
type AnnotationSet map[string]*Annotation

// LoadAnnotations reads the side-channel annotation file at path.
func LoadAnnotations(path string) (AnnotationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()
	return ParseAnnotations(f)
}

// ParseAnnotations parses the side-channel annotation format:
//
//	id  strand  [cds_start  cds_length]
//
// A line with only (id, strand) leaves CDSStart/CDSLength nil — spec.md §9
// requires treating missing fields as absent, not an implicit zero-length
// CDS, which is the bug the original C source had via an implicit struct
// zero-value.
func ParseAnnotations(r io.Reader) (AnnotationSet, error) {
	out := make(AnnotationSet)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("annotation line %d: need at least id and strand, got %q", lineNo, line)
		}

		id := fields[0]
		strand, err := parseStrand(fields[1])
		if err != nil {
			return nil, fmt.Errorf("annotation line %d: %w", lineNo, err)
		}

		ann := &Annotation{ID: id, Strand: strand}

		if len(fields) >= 4 {
			start, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("annotation line %d: invalid cds_start %q: %w", lineNo, fields[2], err)
			}
			length, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("annotation line %d: invalid cds_length %q: %w", lineNo, fields[3], err)
			}
			ann.CDSStart = &start
			ann.CDSLength = &length
		} else if len(fields) == 3 {
			return nil, fmt.Errorf("annotation line %d: cds_start given without cds_length", lineNo)
		}

		out[id] = ann
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan annotation file: %w", err)
	}
	return out, nil
}

func parseStrand(s string) (Strand, error) {
	switch s {
	case "+", "1", "fwd", "forward":
		return Forward, nil
	case "-", "-1", "rev", "revcomp":
		return RevComp, nil
	case ".", "0", "unknown":
		return UnknownStrand, nil
	default:
		return UnknownStrand, fmt.Errorf("unrecognized strand %q", s)
	}
}
