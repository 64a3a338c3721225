package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nfweeks/c4align/internal/pcr"
	"github.com/nfweeks/c4align/internal/pcr/store"
	"github.com/nfweeks/c4align/internal/seqview"
)

// experimentSpec is one parsed line of an ipcress-style experiments file
// (spec.md §6 "PCR input": "Five whitespace-separated fields per
// experiment: id primer_A primer_B min_product_len max_product_len").
type experimentSpec struct {
	id                           string
	primerA, primerB             string
	minProductLen, maxProductLen int
}

func parseExperiments(path string) ([]experimentSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var specs []experimentSpec
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("ipcress: %s:%d: expected 5 fields, got %d", path, lineNo, len(fields))
		}
		minLen, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("ipcress: %s:%d: invalid min_product_len: %w", path, lineNo, err)
		}
		maxLen, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("ipcress: %s:%d: invalid max_product_len: %w", path, lineNo, err)
		}
		specs = append(specs, experimentSpec{
			id: fields[0], primerA: fields[1], primerB: fields[2],
			minProductLen: minLen, maxProductLen: maxLen,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

func newIPCRessCmd() *cobra.Command {
	var (
		mismatches    int
		seedLength    int
		memoryLimitMB int
		storePath     string
	)

	cmd := &cobra.Command{
		Use:   "ipcress <experiments.txt> <target.fasta>",
		Short: "Simulate PCR primer annealing against a target sequence",
		Long:  "Runs the PCR simulator (component I of spec.md), mirroring src/program/ipcress.c.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := parseExperiments(args[0])
			if err != nil {
				return err
			}
			targets, err := seqview.ReadFASTA(args[1], seqview.DNA, nil)
			if err != nil {
				return fmt.Errorf("reading target fasta: %w", err)
			}

			var sink *store.Store
			if storePath != "" {
				sink, err = store.Open(storePath)
				if err != nil {
					return fmt.Errorf("opening pcr store: %w", err)
				}
				defer sink.Close()
			}

			out := cmd.OutOrStdout()

			batches := batchSpecs(specs, memoryLimitMB)
			for _, batch := range batches {
				engine := pcr.NewEngine(mismatches)
				for _, spec := range batch {
					primerA, err := pcr.NewPrimer(spec.id+":A", []byte(spec.primerA), seedLength)
					if err != nil {
						return err
					}
					primerB, err := pcr.NewPrimer(spec.id+":B", []byte(spec.primerB), seedLength)
					if err != nil {
						return err
					}
					if _, err := engine.AddExperiment(spec.id, primerA, primerB, spec.minProductLen, spec.maxProductLen); err != nil {
						return err
					}
				}
				if err := engine.Prepare(); err != nil {
					return err
				}
				for _, target := range targets {
					seqID := target.ID()
					report := func(exp *pcr.Experiment, a, b pcr.Match, productLen int) bool {
						writeIPCRessHit(out, seqID, exp, a, b, productLen)
						if sink != nil {
							if err := sink.Record(hitFromMatch(exp, a, b, productLen)); err != nil && logger != nil {
								logger.Warn("failed to persist PCR hit", zap.Error(err))
							}
						}
						return false
					}
					if err := engine.Simulate(target, report); err != nil {
						return fmt.Errorf("simulating %q: %w", target.ID(), err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&mismatches, "mismatches", 0, "maximum mismatches tolerated per primer anneal")
	cmd.Flags().IntVar(&seedLength, "seed-length", 0, "FSM seed length (0 = full primer length)")
	cmd.Flags().IntVar(&memoryLimitMB, "memory-limit-mb", 0, "batch experiments to bound memory (0 = single batch)")
	cmd.Flags().StringVar(&storePath, "store", "", "optional DuckDB file to durably record every PCR hit")

	return cmd
}

// batchSpecs splits specs into groups of at most batchSize experiments
// (spec.md §4.6 "Memory policy": "the driver may process experiments in
// batches, calling prepare + simulate then resetting the engine before
// loading more"). memoryLimitMB of 0 keeps every experiment in one batch.
func batchSpecs(specs []experimentSpec, memoryLimitMB int) [][]experimentSpec {
	if memoryLimitMB <= 0 {
		return [][]experimentSpec{specs}
	}
	const experimentsPerMB = 50
	batchSize := memoryLimitMB * experimentsPerMB
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]experimentSpec
	for start := 0; start < len(specs); start += batchSize {
		end := start + batchSize
		if end > len(specs) {
			end = len(specs)
		}
		batches = append(batches, specs[start:end])
	}
	if len(batches) == 0 {
		batches = [][]experimentSpec{{}}
	}
	return batches
}

// hitKind classifies a reported match pair the way exonerate's ipcress
// does: which primer annealed on which strand determines whether the
// product reads forward, reverse-complemented, or used the same primer
// at both ends (spec.md §6: "kind ∈ {forward, revcomp, single_A, single_B}").
func hitKind(exp *pcr.Experiment, a, b pcr.Match) string {
	switch {
	case a.Probe.Primer == exp.PrimerA && b.Probe.Primer == exp.PrimerB:
		return "forward"
	case a.Probe.Primer == exp.PrimerB && b.Probe.Primer == exp.PrimerA:
		return "revcomp"
	case a.Probe.Primer == exp.PrimerA && b.Probe.Primer == exp.PrimerA:
		return "single_A"
	default:
		return "single_B"
	}
}

func writeIPCRessHit(out interface{ Write([]byte) (int, error) }, seqID string, exp *pcr.Experiment, a, b pcr.Match, productLen int) {
	fmt.Fprintf(out, "ipcress: %s %s %d %s %d %d %s %d %d %s\n",
		seqID, exp.ID, productLen,
		a.Probe.Primer.ID, a.Pos, a.Mismatches,
		b.Probe.Primer.ID, b.Pos, b.Mismatches,
		hitKind(exp, a, b))
}

func hitFromMatch(exp *pcr.Experiment, a, b pcr.Match, productLen int) store.Hit {
	return store.Hit{
		ExperimentID: exp.ID, PrimerAID: a.Probe.Primer.ID, PrimerBID: b.Probe.Primer.ID,
		APos: a.Pos, BPos: b.Pos, AMismatches: a.Mismatches, BMismatches: b.Mismatches,
		ProductLength: productLen,
	}
}
