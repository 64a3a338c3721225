// Package modeltype supplements spec.md's distilled builder description
// with exonerate's twelve named model families (original_source
// src/model/modeltype.c): a registry mapping a model-type name to a
// Builder that assembles the corresponding c4.Model from a config.Config,
// so the CLI's `align <model-type>` argument is pure lookup.
package modeltype

import (
	"github.com/nfweeks/c4align/internal/config"
	"github.com/nfweeks/c4align/internal/seqview"
	"github.com/nfweeks/c4align/internal/splice"
)

// Context is the concrete c4.UserData threaded through every calc/shadow
// hook at alignment time: the static configuration plus the two sequences
// being aligned and their lazily-materialized splice predictions (spec.md
// §9 "a single context struct per model kind", extended here to also
// carry the sequence views a Calc needs to score a position).
type Context struct {
	Config *config.Config
	Query  seqview.Sequence
	Target seqview.Sequence

	Donor5Forward    *splice.Predictions
	Acceptor3Forward *splice.Predictions
	Donor5Reverse    *splice.Predictions
	Acceptor3Reverse *splice.Predictions
}

// QueryAt returns the query symbol at pos, or 'N' if out of range (callers
// scoring a calc only ever do so within the DP region's bounds, but a
// defensive default avoids a panic on a mis-seeded shadow).
func (c *Context) QueryAt(pos int) byte {
	b, err := c.Query.Get(pos)
	if err != nil {
		return 'N'
	}
	return b
}

// TargetAt returns the target symbol at pos, or 'N' if out of range.
func (c *Context) TargetAt(pos int) byte {
	b, err := c.Target.Get(pos)
	if err != nil {
		return 'N'
	}
	return b
}

// DonorScore returns the forward-strand donor prediction at targetPos.
func (c *Context) DonorScore(targetPos int) (int, error) {
	return c.Donor5Forward.At(targetPos)
}

// AcceptorScore returns the forward-strand acceptor prediction at targetPos.
func (c *Context) AcceptorScore(targetPos int) (int, error) {
	return c.Acceptor3Forward.At(targetPos)
}

// NewContext builds a Context for one alignment task, materializing the
// target's forward donor and acceptor predictors lazily through an
// in-memory store (spec.md §4.4 "an init hook lazily materializes the
// splice predictions"); Donor5Reverse and Acceptor3Reverse are left nil.
// Intron-free model types (ungapped, affine:*) never call
// DonorScore/AcceptorScore, so the predictors built here simply go
// unused for those builders.
func NewContext(cfg *config.Config, query, target seqview.Sequence) (*Context, error) {
	symbols, err := sequenceBytes(target)
	if err != nil {
		return nil, err
	}

	donorMatrix := cfg.Splice.Donor5
	if donorMatrix == nil {
		donorMatrix = splice.DefaultMatrix(splice.Donor5Forward)
	}
	acceptorMatrix := cfg.Splice.Acceptor3
	if acceptorMatrix == nil {
		acceptorMatrix = splice.DefaultMatrix(splice.Acceptor3Forward)
	}

	store := splice.NewMemPredictionStore()
	return &Context{
		Config: cfg, Query: query, Target: target,
		Donor5Forward:    splice.NewPredictions(target.ID(), symbols, donorMatrix, store),
		Acceptor3Forward: splice.NewPredictions(target.ID(), symbols, acceptorMatrix, store),
	}, nil
}

func sequenceBytes(seq seqview.Sequence) ([]byte, error) {
	out := make([]byte, seq.Length())
	for i := range out {
		b, err := seq.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
