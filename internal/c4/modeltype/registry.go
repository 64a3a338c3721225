// registry.go supplements original_source/src/model/modeltype.c: the
// twelve named model families exonerate exposes, each built from
// buildAffineSkeleton plus the sub-models the family needs (spec.md
// §4.1/§4.4, SPEC_FULL.md §4 "Model-type registry").
package modeltype

import (
	"fmt"

	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/c4/intron"
	"github.com/nfweeks/c4align/internal/c4/ner"
	"github.com/nfweeks/c4align/internal/c4/phase"
	"github.com/nfweeks/c4align/internal/config"
)

// Builder assembles and closes a c4.Model for one model type given the
// active configuration.
type Builder func(cfg *config.Config) (*c4.ClosedModel, error)

var registry = map[string]Builder{
	"ungapped":             buildUngapped,
	"ungapped:translated":  buildUngappedTranslated,
	"affine:local":         buildAffine(c4.ScopeAnywhere, c4.ScopeAnywhere),
	"affine:global":        buildAffine(c4.ScopeCorner, c4.ScopeCorner),
	"affine:bestfit":       buildAffine(c4.ScopeEdge, c4.ScopeEdge),
	"cdna2genome":          buildCDNA2Genome,
	"est2genome":           buildEST2Genome,
	"genome2genome":        buildGenome2Genome,
	"coding2coding":         buildCoding2Coding,
	"coding2genome":        buildCoding2Genome,
	"protein2genome":       buildProtein2Genome,
	"protein2dna":          buildProtein2DNA,
}

// Get looks up a model-type builder by name.
func Get(name string) (Builder, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("modeltype: unknown model type %q", name)
	}
	return b, nil
}

// Names returns every registered model-type name.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}

func dnaMatchCalc(cfg *config.Config) c4.ScoreFunc {
	return func(q, t int, raw c4.UserData) int {
		ctx := raw.(*Context)
		return cfg.DNAMatrix.Score(ctx.QueryAt(q), ctx.TargetAt(t))
	}
}

func proteinMatchCalc(cfg *config.Config) c4.ScoreFunc {
	return func(q, t int, raw c4.UserData) int {
		ctx := raw.(*Context)
		return cfg.ProteinMatrix.Score(ctx.QueryAt(q), ctx.TargetAt(t))
	}
}

// codonMatchCalc scores a query protein residue against a translated
// target codon (protein2dna/protein2genome), or two translated codons
// against each other (coding2coding/coding2genome), depending on
// translateQuery.
func codonMatchCalc(cfg *config.Config, translateQuery bool) c4.ScoreFunc {
	return func(q, t int, raw c4.UserData) int {
		ctx := raw.(*Context)
		targetAA := cfg.Translation.Translate(ctx.TargetAt(t), ctx.TargetAt(t+1), ctx.TargetAt(t+2))
		if !translateQuery {
			return cfg.ProteinMatrix.Score(ctx.QueryAt(q), targetAA)
		}
		queryAA := cfg.Translation.Translate(ctx.QueryAt(q), ctx.QueryAt(q+1), ctx.QueryAt(q+2))
		return cfg.ProteinMatrix.Score(queryAA, targetAA)
	}
}

func ungappedSkeleton(name string, cfg *config.Config) *skeleton {
	return buildAffineSkeleton(name, c4.ScopeCorner, c4.ScopeCorner,
		matchParams{DeltaQ: 1, DeltaT: 1, Score: dnaMatchCalc(cfg), MaxScore: 0},
		nil, nil, false, false)
}

func buildUngapped(cfg *config.Config) (*c4.ClosedModel, error) {
	return ungappedSkeleton("ungapped", cfg).Model.Close()
}

func buildUngappedTranslated(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("ungapped:translated", c4.ScopeCorner, c4.ScopeCorner,
		matchParams{DeltaQ: 3, DeltaT: 3, Score: codonMatchCalc(cfg, true), MaxScore: 0},
		nil, nil, false, false)
	return sk.Model.Close()
}

// buildAffine returns a Builder for a plain affine-gapped nucleotide
// alignment at the given terminal scopes (local/global/bestfit differ only
// in START/END scope per spec.md §4.1).
func buildAffine(startScope, endScope c4.Scope) Builder {
	return func(cfg *config.Config) (*c4.ClosedModel, error) {
		sk := buildAffineSkeleton("affine", startScope, endScope,
			matchParams{DeltaQ: 1, DeltaT: 1, Score: dnaMatchCalc(cfg), MaxScore: 0},
			&gapParams{DeltaQ: 1, DeltaT: 0, OpenPenalty: cfg.Affine.GapOpen, ExtendPenalty: cfg.Affine.GapExtend},
			&gapParams{DeltaQ: 0, DeltaT: 1, OpenPenalty: cfg.Affine.GapOpen, ExtendPenalty: cfg.Affine.GapExtend},
			false, false)
		return sk.Model.Close()
	}
}

// insertNER splices the NER sub-model onto sk's placeholder, consuming the
// target axis (genomic insertions unmatched by the cDNA/EST query).
func insertNER(sk *skeleton, cfg *config.Config) error {
	sub := ner.Build("ner", ner.Params{MinNER: cfg.NER.MinNER, MaxNER: cfg.NER.MaxNER, OpenPenalty: cfg.NER.OpenPenalty, DeltaQ: 0, DeltaT: 1})
	_, err := sk.Model.Insert(sub, sk.NERPlaceholder)
	return err
}

// insertIntron splices the splice-aware intron sub-model onto sk's
// placeholder.
func insertIntron(sk *skeleton, cfg *config.Config) error {
	sub := intron.Build("intron", intronParams(cfg))
	_, err := sk.Model.Insert(sub, sk.IntronPlaceholder)
	return err
}

func intronParams(cfg *config.Config) intron.Params {
	return intron.Params{
		MinIntron: cfg.Intron.MinIntron, MaxIntron: cfg.Intron.MaxIntron, OpenPenalty: cfg.Intron.OpenPenalty,
		Donor5: func(t int, ud c4.UserData) (int, error) {
			return ud.(*Context).DonorScore(t)
		},
		Acceptor3: func(t int, ud c4.UserData) (int, error) {
			return ud.(*Context).AcceptorScore(t)
		},
	}
}

// insertPhase splices the phase/split-codon sub-model (spec.md §4.4) onto
// sk's placeholder in place of a plain intron, for the two codon-stepping
// model types whose codons can straddle an intron's splice sites.
// queryAdvance is 3 for a DNA-axis query (buildCoding2Genome) or 1 for a
// protein-axis query (buildProtein2Genome); translateQuery mirrors
// codonMatchCalc's own flag of the same name.
func insertPhase(sk *skeleton, cfg *config.Config, queryAdvance int, translateQuery bool) error {
	preQ1, postQ1 := 0, 1
	preQ2, postQ2 := 0, 1
	if queryAdvance == 3 {
		preQ1, postQ1 = 1, 2
		preQ2, postQ2 = 2, 1
	}
	sub := phase.Build("phase", phase.Params{
		Intron:       intronParams(cfg),
		QueryAdvance: queryAdvance,
		Phase1:       phaseSplitScore(cfg, translateQuery, preQ1, 1, postQ1, 2),
		Phase2:       phaseSplitScore(cfg, translateQuery, preQ2, 2, postQ2, 1),
	})
	_, err := sk.Model.Insert(sub, sk.IntronPlaceholder)
	return err
}

// phaseSplitScore reassembles the 3-base codon split across a phase
// sub-model's pre/post transitions -- preT bases recorded at entryT plus
// the postT bases ending at t (t is the post-advance target position the
// shadow's end hook receives; likewise q, with the query's own preQ+postQ
// split read the same way when translateQuery) -- and scores it exactly
// as codonMatchCalc does for an unsplit codon.
func phaseSplitScore(cfg *config.Config, translateQuery bool, preQ, preT, postQ, postT int) phase.SplitScore {
	return func(entryT, q, t int, ud c4.UserData) int {
		ctx := ud.(*Context)

		tBases := make([]byte, 0, 3)
		for i := 0; i < preT; i++ {
			tBases = append(tBases, ctx.TargetAt(entryT+i))
		}
		for i := 0; i < postT; i++ {
			tBases = append(tBases, ctx.TargetAt(t-postT+i))
		}
		targetAA := cfg.Translation.Translate(tBases[0], tBases[1], tBases[2])

		if !translateQuery {
			return cfg.ProteinMatrix.Score(ctx.QueryAt(q-postQ), targetAA)
		}

		entryQ := q - postQ - preQ
		qBases := make([]byte, 0, 3)
		for i := 0; i < preQ; i++ {
			qBases = append(qBases, ctx.QueryAt(entryQ+i))
		}
		for i := 0; i < postQ; i++ {
			qBases = append(qBases, ctx.QueryAt(q-postQ+i))
		}
		queryAA := cfg.Translation.Translate(qBases[0], qBases[1], qBases[2])
		return cfg.ProteinMatrix.Score(queryAA, targetAA)
	}
}

func buildEST2Genome(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("est2genome", c4.ScopeEdge, c4.ScopeEdge,
		matchParams{DeltaQ: 1, DeltaT: 1, Score: dnaMatchCalc(cfg), MaxScore: 0},
		&gapParams{DeltaQ: 1, DeltaT: 0, OpenPenalty: cfg.Affine.GapOpen, ExtendPenalty: cfg.Affine.GapExtend},
		nil, true, true)
	if err := insertIntron(sk, cfg); err != nil {
		return nil, err
	}
	if err := insertNER(sk, cfg); err != nil {
		return nil, err
	}
	return sk.Model.Close()
}

func buildCDNA2Genome(cfg *config.Config) (*c4.ClosedModel, error) {
	// cdna2genome is est2genome plus a frameshift-tolerant coding core;
	// SPEC_FULL scope keeps the same skeleton and lets the match calc's
	// codon-awareness (via codonMatchCalc) be swapped in by the caller
	// once a CDS annotation narrows the coding region -- the DP graph
	// itself is identical to est2genome's.
	return buildEST2Genome(cfg)
}

func buildGenome2Genome(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("genome2genome", c4.ScopeCorner, c4.ScopeCorner,
		matchParams{DeltaQ: 1, DeltaT: 1, Score: dnaMatchCalc(cfg), MaxScore: 0},
		&gapParams{DeltaQ: 1, DeltaT: 0, OpenPenalty: cfg.Affine.GapOpen, ExtendPenalty: cfg.Affine.GapExtend},
		&gapParams{DeltaQ: 0, DeltaT: 1, OpenPenalty: cfg.Affine.GapOpen, ExtendPenalty: cfg.Affine.GapExtend},
		true, false)
	if err := insertIntron(sk, cfg); err != nil {
		return nil, err
	}
	return sk.Model.Close()
}

func buildCoding2Coding(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("coding2coding", c4.ScopeCorner, c4.ScopeCorner,
		matchParams{DeltaQ: 3, DeltaT: 3, Score: codonMatchCalc(cfg, true), MaxScore: 0},
		&gapParams{DeltaQ: 3, DeltaT: 0, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		&gapParams{DeltaQ: 0, DeltaT: 3, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		false, false)
	return sk.Model.Close()
}

func buildCoding2Genome(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("coding2genome", c4.ScopeCorner, c4.ScopeCorner,
		matchParams{DeltaQ: 3, DeltaT: 3, Score: codonMatchCalc(cfg, true), MaxScore: 0},
		&gapParams{DeltaQ: 3, DeltaT: 0, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		nil, true, false)
	if err := insertPhase(sk, cfg, 3, true); err != nil {
		return nil, err
	}
	return sk.Model.Close()
}

func buildProtein2Genome(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("protein2genome", c4.ScopeEdge, c4.ScopeEdge,
		matchParams{DeltaQ: 1, DeltaT: 3, Score: codonMatchCalc(cfg, false), MaxScore: 0},
		&gapParams{DeltaQ: 1, DeltaT: 0, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		nil, true, false)
	if err := insertPhase(sk, cfg, 1, false); err != nil {
		return nil, err
	}
	return sk.Model.Close()
}

func buildProtein2DNA(cfg *config.Config) (*c4.ClosedModel, error) {
	sk := buildAffineSkeleton("protein2dna", c4.ScopeEdge, c4.ScopeEdge,
		matchParams{DeltaQ: 1, DeltaT: 3, Score: codonMatchCalc(cfg, false), MaxScore: 0},
		&gapParams{DeltaQ: 1, DeltaT: 0, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		&gapParams{DeltaQ: 0, DeltaT: 3, OpenPenalty: cfg.Affine.CodonGapOpen, ExtendPenalty: cfg.Affine.CodonGapExtend},
		false, false)
	return sk.Model.Close()
}
