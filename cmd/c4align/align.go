package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/c4/modeltype"
	"github.com/nfweeks/c4align/internal/config"
	"github.com/nfweeks/c4align/internal/optimal"
	"github.com/nfweeks/c4align/internal/output"
	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/subst"
)

func newAlignCmd() *cobra.Command {
	var (
		format              string
		ryoTemplate         string
		queryKind           string
		targetKind          string
		memoryLimitMB       int
		threshold           int
		matchScore          int
		mismatchScore       int
		queryAnnotations    string
		forwardStrandCoords bool
		gffSource           string
	)

	cmd := &cobra.Command{
		Use:   "align <model-type> <query.fasta> <target.fasta>",
		Short: "Align a query sequence against a target using a named C4 model",
		Long: fmt.Sprintf("Runs the optimal alignment driver (component G of spec.md) over one of the %d named model types.\n\nModel types: %s",
			len(modeltype.Names()), modeltype.Names()),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelName, queryPath, targetPath := args[0], args[1], args[2]

			build, err := modeltype.Get(modelName)
			if err != nil {
				return err
			}

			cfg := config.FromViper(viper.GetViper())
			cfg.Alignment.ForwardStrandCoords = forwardStrandCoords
			cfg.DNAMatrix = subst.NewDNAMatrix(matchScore, mismatchScore)
			cfg.ProteinMatrix = subst.NewIdentityProteinMatrix(matchScore, mismatchScore)
			cfg.Translation = subst.StandardCode{}
			if err := cfg.Validate(); err != nil {
				return err
			}

			qKind, err := parseKind(queryKind)
			if err != nil {
				return err
			}
			tKind, err := parseKind(targetKind)
			if err != nil {
				return err
			}

			var anns seqview.AnnotationSet
			if queryAnnotations != "" {
				anns, err = seqview.LoadAnnotations(queryAnnotations)
				if err != nil {
					return fmt.Errorf("loading annotations: %w", err)
				}
			}

			queries, err := seqview.ReadFASTA(queryPath, qKind, anns)
			if err != nil {
				return fmt.Errorf("reading query fasta: %w", err)
			}
			targets, err := seqview.ReadFASTA(targetPath, tKind, nil)
			if err != nil {
				return fmt.Errorf("reading target fasta: %w", err)
			}
			if len(queries) == 0 || len(targets) == 0 {
				return fmt.Errorf("align: query and target fasta files must each contain at least one sequence")
			}

			model, err := build(cfg)
			if err != nil {
				return fmt.Errorf("building %s model: %w", modelName, err)
			}

			rank := 0
			for _, query := range queries {
				for _, target := range targets {
					rank++
					if err := alignPair(cmd, model, cfg, query, target, rank, alignOptions{
						format: format, ryoTemplate: ryoTemplate, memoryLimitMB: memoryLimitMB,
						threshold: threshold, modelName: modelName, gffSource: gffSource,
					}); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "sugar", "output format: sugar, cigar, vulgar, gff, ryo")
	cmd.Flags().StringVar(&ryoTemplate, "ryo", "", "RYO (roll-your-own) template, required when --format=ryo")
	cmd.Flags().StringVar(&queryKind, "query-kind", "dna", "query sequence alphabet: dna, protein")
	cmd.Flags().StringVar(&targetKind, "target-kind", "dna", "target sequence alphabet: dna, protein")
	cmd.Flags().IntVar(&memoryLimitMB, "memory-limit-mb", 0, "reduced-space DP memory budget in MB (0 = unlimited, always full-space)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "minimum accepted alignment score")
	cmd.Flags().IntVar(&matchScore, "match", 5, "match score for the default substitution matrix")
	cmd.Flags().IntVar(&mismatchScore, "mismatch", -4, "mismatch score for the default substitution matrix")
	cmd.Flags().StringVar(&queryAnnotations, "query-annotations", "", "optional side-channel CDS/strand annotation file for the query")
	cmd.Flags().BoolVar(&forwardStrandCoords, "forward-strand-coords", false, "report target coordinates on the forward strand regardless of alignment strand")
	cmd.Flags().StringVar(&gffSource, "gff-source", "c4align", "GFF source column value when --format=gff")

	return cmd
}

type alignOptions struct {
	format        string
	ryoTemplate   string
	memoryLimitMB int
	threshold     int
	modelName     string
	gffSource     string
}

func alignPair(cmd *cobra.Command, model *c4.ClosedModel, cfg *config.Config, query, target seqview.Sequence, rank int, opt alignOptions) error {
	ctx, err := modeltype.NewContext(cfg, query, target)
	if err != nil {
		return fmt.Errorf("building alignment context: %w", err)
	}

	budgetBytes := int64(opt.memoryLimitMB) * 1024 * 1024
	driver := optimal.NewDriver(model, ctx, budgetBytes, opt.threshold)
	region := c4.Region{QLength: query.Length(), TLength: target.Length()}

	result, accepted, err := driver.Align(region)
	if err != nil {
		if logger != nil {
			logger.Debug("alignment failed", zap.String("query", query.ID()), zap.String("target", target.ID()), zap.Error(err))
		}
		return fmt.Errorf("aligning %s vs %s: %w", query.ID(), target.ID(), err)
	}
	if !accepted {
		if logger != nil {
			logger.Debug("no alignment above threshold", zap.String("query", query.ID()), zap.String("target", target.ID()))
		}
		return nil
	}

	line, err := formatResult(result, query, target, rank, opt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

func formatResult(a *alignment.Alignment, query, target seqview.Sequence, rank int, opt alignOptions) (string, error) {
	switch opt.format {
	case "sugar":
		return output.WriteSugar(a, query, target), nil
	case "cigar":
		return output.WriteCigar(a, query, target), nil
	case "vulgar":
		return output.WriteVulgar(a, query, target), nil
	case "gff":
		return output.WriteGFF(a, query, target, output.GFFOptions{Source: opt.gffSource}), nil
	case "ryo":
		if opt.ryoTemplate == "" {
			return "", fmt.Errorf("align: --ryo template required when --format=ryo")
		}
		return output.RenderRYO(opt.ryoTemplate, output.RYOContext{
			Alignment: a, Query: query, Target: target, ModelName: opt.modelName, Rank: rank,
		})
	default:
		return "", fmt.Errorf("align: unknown output format %q", opt.format)
	}
}

func parseKind(name string) (seqview.Kind, error) {
	switch name {
	case "dna":
		return seqview.DNA, nil
	case "protein":
		return seqview.Protein, nil
	default:
		return seqview.Unknown, fmt.Errorf("align: unknown sequence kind %q (want dna or protein)", name)
	}
}
