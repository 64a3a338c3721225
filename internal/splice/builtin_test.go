package splice

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/subst"
)

func TestDefaultMatrixAcceptsCanonicalDinucleotide(t *testing.T) {
	m := DefaultMatrix(Donor5Forward)
	score := m.Score([]byte("GT"), 0)
	require.NotEqual(t, subst.ImpossiblyLow, score)
	require.Equal(t, 0, score)
}

func TestDefaultMatrixRejectsNonCanonicalDinucleotide(t *testing.T) {
	m := DefaultMatrix(Acceptor3Forward)
	require.Equal(t, subst.ImpossiblyLow, m.Score([]byte("CC"), 0))
}
