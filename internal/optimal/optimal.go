// Package optimal implements the optimal-alignment driver of spec.md
// §4.3's reduced-space algorithm and §3's Optimal driver (component G): it
// dispatches between full quadratic-space Viterbi and the recursive
// checkpoint/continuation divide-and-conquer path based on a memory
// budget, and performs the final traceback/stitching.
package optimal

import (
	"errors"
	"fmt"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/viterbi"
)

// Errors surfaced by the driver (spec.md §7).
var (
	ErrResourceExhausted = errors.New("optimal: memory budget exceeded with no reduced-space path available")
)

// scoreBytes is the per-cell byte cost used to estimate table_bytes
// (spec.md §4.3: "table_bytes ≈ q_length × t_length × cell_size ×
// sizeof(score)"); 8 bytes, the size of one 64-bit score.
const scoreBytes = 8

// Driver runs the optimal alignment search for one region.
type Driver struct {
	Model         *c4.ClosedModel
	UserData      c4.UserData
	MemoryBudgetBytes int64
	Threshold     int
}

// NewDriver returns a Driver with the given memory budget (bytes); 0
// disables the reduced-space path entirely, forcing full-table DP.
func NewDriver(model *c4.ClosedModel, ud c4.UserData, memoryBudgetBytes int64, threshold int) *Driver {
	return &Driver{Model: model, UserData: ud, MemoryBudgetBytes: memoryBudgetBytes, Threshold: threshold}
}

// tableBytes estimates the quadratic-space DP table's memory footprint.
func (d *Driver) tableBytes(region c4.Region) int64 {
	cellSize := int64(1 + d.Model.TotalShadowDesignations())
	return int64(region.QLength+1) * int64(region.TLength+1) * cellSize * scoreBytes
}

// Align returns the best alignment over region, choosing full-space DP
// when it fits the memory budget, else the reduced-space checkpoint
// recursion (spec.md §4.3 steps 1-4).
func (d *Driver) Align(region c4.Region) (*alignment.Alignment, bool, error) {
	if d.tableBytes(region) <= d.MemoryBudgetBytes || d.MemoryBudgetBytes <= 0 {
		return d.alignFullSpace(region)
	}
	return d.alignReducedSpace(region)
}

func (d *Driver) alignFullSpace(region c4.Region) (*alignment.Alignment, bool, error) {
	res, err := viterbi.Run(viterbi.Task{
		Model: d.Model, Region: region, Mode: viterbi.FindPath, UserData: d.UserData, Threshold: d.Threshold,
	})
	if err != nil {
		return nil, false, err
	}
	if !res.Accepted {
		return nil, false, nil
	}
	return res.Alignment, true, nil
}

// alignReducedSpace implements spec.md §4.3's 4-step reduced-space
// algorithm: narrow the region with FIND_REGION (if the model is not
// global), then FIND_CHECKPOINTS, then recurse or FIND_PATH on each
// sub-alignment, stitching results while asserting score equality at the
// seams.
func (d *Driver) alignReducedSpace(region c4.Region) (*alignment.Alignment, bool, error) {
	narrowed := region
	if !d.Model.IsGlobal() {
		regionRes, err := viterbi.Run(viterbi.Task{Model: d.Model, Region: region, Mode: viterbi.FindRegion, UserData: d.UserData, Threshold: d.Threshold})
		if err != nil {
			return nil, false, err
		}
		if !regionRes.Accepted {
			return nil, false, nil
		}
		narrowed = regionRes.SubRegion
	}

	return d.checkpointRecurse(narrowed, nil)
}

// checkpointRecurse runs FIND_CHECKPOINTS over region (optionally under
// continuation cont), recursing into any sub-alignment whose sub-region is
// still too large for full-space DP, and stitches the results.
func (d *Driver) checkpointRecurse(region c4.Region, cont *viterbi.Continuation) (*alignment.Alignment, bool, error) {
	task := viterbi.Task{Model: d.Model, Region: region, Mode: viterbi.FindCheckpoints, UserData: d.UserData, Threshold: d.Threshold, Continuation: cont}
	res, err := viterbi.Run(task)
	if err != nil {
		return nil, false, err
	}
	if !res.Accepted {
		return nil, false, nil
	}

	stitched := alignment.New(d.Model, region, 0)
	for _, cp := range res.Checkpoints {
		var sub *alignment.Alignment
		// A checkpoint whose sub-region spans the whole region just
		// processed means the checkpoint stride never found an interior
		// row to split on; recursing again would re-run the identical
		// FIND_CHECKPOINTS call forever, so fall straight to FIND_PATH.
		shrank := cp.SubRegion != region
		if shrank && d.tableBytes(cp.SubRegion) > d.MemoryBudgetBytes && d.MemoryBudgetBytes > 0 {
			subCont := &viterbi.Continuation{FirstState: cp.FirstState, FirstCell: cp.FirstCell, FinalState: cp.FinalState, FinalCell: cp.FinalCell}
			sub, _, err = d.checkpointRecurse(cp.SubRegion, subCont)
		} else {
			sub, _, err = d.finalPath(cp, region)
		}
		if err != nil {
			return nil, false, err
		}
		if sub == nil {
			return nil, false, fmt.Errorf("%w: checkpoint sub-alignment failed to reconstruct", ErrResourceExhausted)
		}
		for _, op := range sub.Ops {
			stitched.Add(op.Transition, op.Length)
		}
		stitched.Score += sub.Score
	}

	if stitched.Score != res.Score {
		return nil, false, fmt.Errorf("optimal: stitched score %d does not match checkpoint score %d", stitched.Score, res.Score)
	}
	return stitched, true, nil
}

// finalPath computes FIND_PATH in continuation mode for one checkpoint's
// sub-region and rewrites its transition ids back into the original model
// (a no-op here since checkpoints are computed directly against d.Model,
// not a derived model; the hook exists for model-derivation callers).
func (d *Driver) finalPath(cp viterbi.Checkpoint, _ c4.Region) (*alignment.Alignment, bool, error) {
	cont := &viterbi.Continuation{FirstState: cp.FirstState, FirstCell: cp.FirstCell, FinalState: cp.FinalState, FinalCell: cp.FinalCell}
	res, err := viterbi.Run(viterbi.Task{Model: d.Model, Region: cp.SubRegion, Mode: viterbi.FindPath, UserData: d.UserData, Continuation: cont, Threshold: d.Threshold})
	if err != nil {
		return nil, false, err
	}
	if !res.Accepted {
		return nil, false, nil
	}
	return res.Alignment, true, nil
}
