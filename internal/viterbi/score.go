package viterbi

// runScoreOnly and runRegion both share the row-reduced forward sweep in
// rowspace.go: neither mode needs a traceback, so the DP never has to
// materialize more than the handful of trailing rows computeCell's rowAt
// callback can actually reach (spec.md §4.3 "reduced space"), instead of
// full.go's quadratic-space table.
func runScoreOnly(task Task) (*Result, error) {
	return sweepForward(task)
}

func runRegion(task Task) (*Result, error) {
	return sweepForward(task)
}
