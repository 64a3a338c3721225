package splice

// DefaultMatrix returns the built-in splice-site matrix used when no
// `splice5_data_path`/`splice3_data_path` is configured (spec.md §6:
// "built-in primate model otherwise"). It is deliberately minimal: a
// two-base window spanning exactly the canonical dinucleotide with an
// all-zero log-likelihood table, so scoring reduces to the GT-AG
// canonical check alone. A real deployment supplies a trained
// position-specific matrix via the data path instead.
func DefaultMatrix(kind Kind) *Matrix {
	table := [][5]float64{{0, 0, 0, 0, 0}, {0, 0, 0, 0, 0}}
	m, err := NewMatrix(kind, 2, 0, table, true)
	if err != nil {
		// NewMatrix only rejects a malformed built-in table, which would be
		// a programming error in this function, not a runtime condition.
		panic(err)
	}
	return m
}
