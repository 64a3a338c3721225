// Package config provides c4align's single configuration surface: the
// Config struct is both the viper-backed settings bag for the CLI (spec.md
// §6 "Configuration surface") and the static configuration carried, inside
// internal/c4/modeltype.Context, as the opaque per-model-kind UserData
// threaded through every c4.Calc/init/exit/shadow hook (spec.md §9
// Design Notes: "a tagged variant... dispatched by the model at close
// time... a single context struct per model kind").
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/splice"
	"github.com/nfweeks/c4align/internal/subst"
)

// Errors surfaced by configuration validation (spec.md §7 "Invalid
// configuration").
var (
	ErrInvalidConfig = fmt.Errorf("config: invalid configuration")
)

// Alignment holds §6 "alignment:" settings.
type Alignment struct {
	Width                int
	ForwardStrandCoords  bool
}

// Affine holds §6 "affine:" gap-penalty settings. All penalties must be
// negative (spec.md §7).
type Affine struct {
	GapOpen, GapExtend           int
	CodonGapOpen, CodonGapExtend int
}

// Intron holds §6 "intron:" settings.
type Intron struct {
	MinIntron, MaxIntron int
	OpenPenalty          int
}

// NER holds §6 "NER:" settings.
type NER struct {
	MinNER, MaxNER int
	OpenPenalty    int
}

// SpliceConfig holds §6 "splice:" settings, including the loaded
// donor/acceptor matrices.
type SpliceConfig struct {
	Donor5Path, Acceptor3Path string
	ForceGTAG                 bool
	Donor5, Acceptor3         *splice.Matrix
}

// HSP holds §6 "HSP/seeding:" settings.
type HSP struct {
	FilterThreshold   int
	UseWordhoodDropoff bool
	SeedRepeat        int
	WordLength        map[string]int // "dna", "protein", "codon"
	WordLimit         int
	GeneseedThreshold int
	GeneseedRepeat    int
}

// PCR holds §6 "PCR:" settings.
type PCR struct {
	Mismatches     int
	SeedLength     int
	MemoryLimitMB  int
	DisplayPretty  bool
	DisplayProducts bool
}

// Config is the configuration a modeltype.Context carries as part of
// c4.UserData for one DP task: it
// bundles substitution matrices, the translation table, and every §6
// parameter group a model-type builder (internal/c4/modeltype) needs.
type Config struct {
	Alignment Alignment
	Affine    Affine
	Intron    Intron
	NER       NER
	Splice    SpliceConfig
	HSP       HSP
	PCR       PCR

	DNAMatrix     *subst.Matrix
	ProteinMatrix *subst.Matrix
	Translation   seqview.Translator

	FrameshiftsAllowed bool
}

// Defaults returns the §6-documented default configuration.
func Defaults() *Config {
	return &Config{
		Alignment: Alignment{Width: 80, ForwardStrandCoords: false},
		Affine:    Affine{GapOpen: -12, GapExtend: -4, CodonGapOpen: -18, CodonGapExtend: -8},
		Intron:    Intron{MinIntron: 30, MaxIntron: 200000, OpenPenalty: -30},
		NER:       NER{MinNER: 10, MaxNER: 50000, OpenPenalty: -20},
		Splice:    SpliceConfig{ForceGTAG: false},
		HSP: HSP{
			FilterThreshold: 0, UseWordhoodDropoff: true, SeedRepeat: 1,
			WordLength: map[string]int{"dna": 12, "protein": 6, "codon": 12},
			WordLimit:  0, GeneseedThreshold: 0, GeneseedRepeat: 1,
		},
		PCR: PCR{Mismatches: 0, SeedLength: 0, MemoryLimitMB: 0, DisplayPretty: false, DisplayProducts: false},
	}
}

// SetCodonWordLimit assigns limit to the codon word-length threshold's
// wordlimit field (spec.md's documented fix: the exonerate source's
// HSP_Param_set_codon_word_limit assigned this to the `threshold` field
// instead, a bug the reimplementation corrects by setting WordLimit).
func (c *Config) SetCodonWordLimit(limit int) {
	c.HSP.WordLimit = limit
}

// Validate enforces spec.md §7's "invalid configuration" rules: penalties
// that must be negative are negative, and numeric ranges are sane.
func (c *Config) Validate() error {
	negatives := map[string]int{
		"affine.gap_open": c.Affine.GapOpen, "affine.gap_extend": c.Affine.GapExtend,
		"affine.codon_gap_open": c.Affine.CodonGapOpen, "affine.codon_gap_extend": c.Affine.CodonGapExtend,
		"intron.open_penalty": c.Intron.OpenPenalty, "ner.open_penalty": c.NER.OpenPenalty,
	}
	for name, v := range negatives {
		if v >= 0 {
			return fmt.Errorf("%w: %s must be negative, got %d", ErrInvalidConfig, name, v)
		}
	}
	if c.Intron.MinIntron > c.Intron.MaxIntron {
		return fmt.Errorf("%w: intron.min_intron (%d) exceeds intron.max_intron (%d)", ErrInvalidConfig, c.Intron.MinIntron, c.Intron.MaxIntron)
	}
	if c.NER.MinNER > c.NER.MaxNER {
		return fmt.Errorf("%w: ner.min_ner (%d) exceeds ner.max_ner (%d)", ErrInvalidConfig, c.NER.MinNER, c.NER.MaxNER)
	}
	return nil
}

// BindDefaults registers every §6 default into v, mirroring the teacher's
// viper.SetDefault calls in cmd/vibe-vep, so flags/env/config-file
// overrides all layer over the same baseline (spec.md §2.2).
func BindDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("alignment.width", d.Alignment.Width)
	v.SetDefault("alignment.forward_strand_coords", d.Alignment.ForwardStrandCoords)
	v.SetDefault("affine.gap_open", d.Affine.GapOpen)
	v.SetDefault("affine.gap_extend", d.Affine.GapExtend)
	v.SetDefault("affine.codon_gap_open", d.Affine.CodonGapOpen)
	v.SetDefault("affine.codon_gap_extend", d.Affine.CodonGapExtend)
	v.SetDefault("intron.min_intron", d.Intron.MinIntron)
	v.SetDefault("intron.max_intron", d.Intron.MaxIntron)
	v.SetDefault("intron.open_penalty", d.Intron.OpenPenalty)
	v.SetDefault("ner.min_ner", d.NER.MinNER)
	v.SetDefault("ner.max_ner", d.NER.MaxNER)
	v.SetDefault("ner.open_penalty", d.NER.OpenPenalty)
	v.SetDefault("splice.force_gtag", d.Splice.ForceGTAG)
	v.SetDefault("hsp.filter_threshold", d.HSP.FilterThreshold)
	v.SetDefault("hsp.seed_repeat", d.HSP.SeedRepeat)
	v.SetDefault("pcr.mismatches", d.PCR.Mismatches)
	v.SetDefault("pcr.memory_limit_mb", d.PCR.MemoryLimitMB)
}

// FromViper builds a Config from v's current settings layered over
// Defaults(); substitution matrices and the translation table are filled
// in separately by the caller once sequence alphabets are known.
func FromViper(v *viper.Viper) *Config {
	c := Defaults()
	c.Alignment.Width = v.GetInt("alignment.width")
	c.Alignment.ForwardStrandCoords = v.GetBool("alignment.forward_strand_coords")
	c.Affine.GapOpen = v.GetInt("affine.gap_open")
	c.Affine.GapExtend = v.GetInt("affine.gap_extend")
	c.Affine.CodonGapOpen = v.GetInt("affine.codon_gap_open")
	c.Affine.CodonGapExtend = v.GetInt("affine.codon_gap_extend")
	c.Intron.MinIntron = v.GetInt("intron.min_intron")
	c.Intron.MaxIntron = v.GetInt("intron.max_intron")
	c.Intron.OpenPenalty = v.GetInt("intron.open_penalty")
	c.NER.MinNER = v.GetInt("ner.min_ner")
	c.NER.MaxNER = v.GetInt("ner.max_ner")
	c.NER.OpenPenalty = v.GetInt("ner.open_penalty")
	c.Splice.ForceGTAG = v.GetBool("splice.force_gtag")
	c.Splice.Donor5Path = v.GetString("splice.splice5_data_path")
	c.Splice.Acceptor3Path = v.GetString("splice.splice3_data_path")
	c.HSP.FilterThreshold = v.GetInt("hsp.filter_threshold")
	c.HSP.SeedRepeat = v.GetInt("hsp.seed_repeat")
	c.PCR.Mismatches = v.GetInt("pcr.mismatches")
	c.PCR.MemoryLimitMB = v.GetInt("pcr.memory_limit_mb")
	return c
}
